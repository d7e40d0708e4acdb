package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStorageBackend     = "storage.backend"
	keyStorageDataDir     = "storage.data_dir"
	keyOracleBaseURL      = "oracle.base_url"
	keyOracleAPIKey       = "oracle.api_key"
	keyOracleTimeoutMS    = "oracle.timeout_ms"
	keyOracleRate         = "oracle.rate_per_second"
	keyOracleBurst        = "oracle.burst"
	keyOracleBackfill     = "oracle.backfill_interval"
	keySearchOracleLimit  = "search.oracle_limit"
	keySearchOracleTO     = "search.oracle_timeout_ms"
	keySearchStoreTO      = "search.store_timeout_ms"
	keySearchPageSize     = "search.page_size"
	keyTranslateBaseURL   = "translate.base_url"
	keyTranslateAPIKey    = "translate.api_key"
	keyTranslateModel     = "translate.model"
	keyHTTPAddr           = "http.addr"
	keyHTTPAllowedOrigins = "http.allowed_origins"
)

// OracleFactory builds a ranking oracle client from settings.
type OracleFactory func(settings domain.OracleSettings) driven.RankingOracle

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	newOracle   OracleFactory
}

// NewSettingsService creates a new settings service.
// The newOracle parameter is optional (can be nil); without it ValidateOracle
// reports the oracle as unavailable.
func NewSettingsService(configStore driven.ConfigStore, newOracle OracleFactory) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		newOracle:   newOracle,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Oracle: domain.OracleSettings{
			BaseURL:          s.configStore.GetString(keyOracleBaseURL),
			APIKey:           s.configStore.GetString(keyOracleAPIKey),
			Timeout:          s.getMillis(keyOracleTimeoutMS, defaults.Oracle.Timeout),
			RatePerSecond:    s.getFloat(keyOracleRate, defaults.Oracle.RatePerSecond),
			Burst:            s.getInt(keyOracleBurst, defaults.Oracle.Burst),
			BackfillInterval: s.getInterval(keyOracleBackfill, defaults.Oracle.BackfillInterval),
		},
		Search: domain.SearchTuning{
			OracleLimit:     s.getInt(keySearchOracleLimit, defaults.Search.OracleLimit),
			OracleTimeout:   s.getMillis(keySearchOracleTO, defaults.Search.OracleTimeout),
			StoreTimeout:    s.getMillis(keySearchStoreTO, defaults.Search.StoreTimeout),
			DefaultPageSize: s.getInt(keySearchPageSize, defaults.Search.DefaultPageSize),
		},
		Translate: domain.TranslateSettings{
			BaseURL: s.configStore.GetString(keyTranslateBaseURL), // No default - empty means the public OpenAI endpoint
			APIKey:  s.configStore.GetString(keyTranslateAPIKey),
			Model:   s.getString(keyTranslateModel, defaults.Translate.Model),
		},
		HTTP: domain.HTTPSettings{
			Addr:           s.getString(keyHTTPAddr, defaults.HTTP.Addr),
			AllowedOrigins: s.getStringSlice(keyHTTPAllowedOrigins, defaults.HTTP.AllowedOrigins),
		},
	}

	if settings.Search.DefaultPageSize > domain.MaxPageSize {
		settings.Search.DefaultPageSize = domain.MaxPageSize
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}

	values := []struct {
		key   string
		value any
	}{
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyOracleBaseURL, settings.Oracle.BaseURL},
		{keyOracleTimeoutMS, settings.Oracle.Timeout.Milliseconds()},
		{keyOracleRate, settings.Oracle.RatePerSecond},
		{keyOracleBurst, settings.Oracle.Burst},
		{keyOracleBackfill, settings.Oracle.BackfillInterval.String()},
		{keySearchOracleLimit, settings.Search.OracleLimit},
		{keySearchOracleTO, settings.Search.OracleTimeout.Milliseconds()},
		{keySearchStoreTO, settings.Search.StoreTimeout.Milliseconds()},
		{keySearchPageSize, settings.Search.DefaultPageSize},
		{keyTranslateBaseURL, settings.Translate.BaseURL},
		{keyTranslateModel, settings.Translate.Model},
		{keyHTTPAddr, settings.HTTP.Addr},
		{keyHTTPAllowedOrigins, settings.HTTP.AllowedOrigins},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so a save never wipes them.
	if settings.Oracle.APIKey != "" {
		if err := s.configStore.Set(keyOracleAPIKey, settings.Oracle.APIKey); err != nil {
			return fmt.Errorf("save oracle api_key: %w", err)
		}
	}
	if settings.Translate.APIKey != "" {
		if err := s.configStore.Set(keyTranslateAPIKey, settings.Translate.APIKey); err != nil {
			return fmt.Errorf("save translate api_key: %w", err)
		}
	}

	return nil
}

// SetOracle configures the ranking oracle endpoint.
// An empty baseURL disables the oracle tier.
func (s *SettingsService) SetOracle(baseURL, apiKey string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Oracle.BaseURL = baseURL
	if apiKey != "" {
		settings.Oracle.APIKey = apiKey
	}
	return s.Save(settings)
}

// SetTranslator configures the translation service.
func (s *SettingsService) SetTranslator(baseURL, model, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: API key required for translation", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Translate.BaseURL = baseURL
	if model != "" {
		settings.Translate.Model = model
	}
	settings.Translate.APIKey = apiKey
	return s.Save(settings)
}

// SetStorage selects the storage backend and data directory.
func (s *SettingsService) SetStorage(backend domain.StorageBackend, dataDir string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Storage.Backend = backend
	settings.Storage.DataDir = dataDir
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateOracle pings the configured oracle.
func (s *SettingsService) ValidateOracle(ctx context.Context) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Oracle.IsConfigured() || s.newOracle == nil {
		return domain.ErrOracleUnavailable
	}
	if err := s.newOracle(settings.Oracle).Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, err)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	ms := s.configStore.GetInt(key)
	if ms <= 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

// getInterval reads a duration string such as "15m". "0" disables the task.
func (s *SettingsService) getInterval(key string, defaultVal time.Duration) time.Duration {
	str := s.configStore.GetString(key)
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !val.IsValid() {
		return defaultVal
	}
	return val
}
