package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/mufti/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mufti/internal/adapters/driven/oracle/httporacle"
	"github.com/custodia-labs/mufti/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mufti/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mufti/internal/adapters/driven/translate/openai"
	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
	"github.com/custodia-labs/mufti/internal/core/services"
	"github.com/custodia-labs/mufti/internal/logger"
)

// Options override settings for a single run.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.mufti.
	ConfigDir string

	// DataDir overrides storage.data_dir.
	DataDir string

	// Storage overrides storage.backend.
	Storage domain.StorageBackend
}

// App holds the wired services for one process.
type App struct {
	Config     *file.ConfigStore
	Settings   *services.SettingsService
	Search     *services.SearchService
	Categories *services.CategoryService
	Fatwas     *services.FatwaService

	mu      sync.RWMutex
	current *domain.AppSettings
	indexer driven.OracleIndexer
	closers []func() error
}

// Open loads settings and builds every service.
func Open(opts Options) (*App, error) {
	if opts.Storage != "" && !opts.Storage.IsValid() {
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, opts.Storage)
	}

	config, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	settingsSvc := services.NewSettingsService(config, NewOracle)
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if opts.Storage != "" {
		settings.Storage.Backend = opts.Storage
	}
	if opts.DataDir != "" {
		settings.Storage.DataDir = opts.DataDir
	}

	a := &App{
		Config:   config,
		Settings: settingsSvc,
		current:  settings,
	}

	fatwas, categories, err := a.openStores(settings.Storage)
	if err != nil {
		return nil, err
	}

	var ranking driven.RankingOracle
	if client := oracleClient(settings.Oracle); client != nil {
		ranking = client
		a.indexer = client
	}

	var translator driven.Translator
	if settings.Translate.IsConfigured() {
		t, err := openai.FromSettings(settings.Translate)
		if err != nil {
			logger.Warn("translator disabled: %v", err)
		} else {
			translator = t
		}
	}

	a.Categories = services.NewCategoryService(categories, fatwas)
	a.Search = services.NewSearchService(fatwas, a.Categories, ranking)
	a.Search.SetTuning(settings.Search)
	a.Categories.SetStoreTimeout(settings.Search.StoreTimeout)
	a.Fatwas = services.NewFatwaService(fatwas, categories, a.indexer, translator)
	a.Fatwas.SetIndexTimeout(settings.Oracle.Timeout)

	logger.Debug("storage=%s oracle=%t translator=%t",
		settings.Storage.Backend, ranking != nil, translator != nil)

	return a, nil
}

// Current returns the settings the app was last configured with.
func (a *App) Current() domain.AppSettings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.current
}

// Reload re-reads settings and applies the parts that can change while
// running: the search budgets and the ranking oracle used for queries.
// Storage, the translator and the write-side indexer keep their startup
// configuration.
func (a *App) Reload() error {
	settings, err := a.Settings.Get()
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	settings.Storage = a.current.Storage

	a.Search.SetTuning(settings.Search)
	a.Categories.SetStoreTimeout(settings.Search.StoreTimeout)
	if client := oracleClient(settings.Oracle); client != nil {
		a.Search.SetOracle(client)
	} else {
		a.Search.SetOracle(nil)
	}
	a.current = settings

	logger.Debug("search tuning %+v, oracle=%t", settings.Search, settings.Oracle.IsConfigured())
	return nil
}

// WatchConfig reloads settings whenever the config file changes.
// It blocks until ctx is done.
func (a *App) WatchConfig(ctx context.Context) error {
	return a.Config.Watch(ctx, func() {
		if err := a.Reload(); err != nil {
			logger.Warn("reload settings: %v", err)
		}
	})
}

// Scheduler returns the oracle backfill scheduler, or nil when there is no
// oracle or the backfill interval is zero.
func (a *App) Scheduler() *services.Scheduler {
	interval := a.Current().Oracle.BackfillInterval
	if a.indexer == nil || interval <= 0 {
		return nil
	}
	return services.NewScheduler(a.Fatwas, interval)
}

// Close releases the stores.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStores(settings domain.StorageSettings) (driven.FatwaStore, driven.CategoryStore, error) {
	switch settings.Backend {
	case domain.StorageMemory:
		return memory.NewFatwaStore(), memory.NewCategoryStore(), nil
	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		logger.Debug("sqlite store at %s", store.Path())
		return store.FatwaStore(), store.CategoryStore(), nil
	default:
		return nil, nil, fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

// NewOracle builds a ranking oracle client from settings.
func NewOracle(settings domain.OracleSettings) driven.RankingOracle {
	return httporacle.FromSettings(settings)
}

func oracleClient(settings domain.OracleSettings) *httporacle.Client {
	if !settings.IsConfigured() {
		return nil
	}
	return httporacle.FromSettings(settings)
}
