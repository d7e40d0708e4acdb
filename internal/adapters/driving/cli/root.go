// Package cli provides the mufti command-line interface built on cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mufti/internal/app"
	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
	"github.com/custodia-labs/mufti/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	configDir string
	dataDir   string
	storage   string
	verbose   bool
)

// Services used by the commands. They are wired by the root pre-run hook
// unless already set (tests inject their own).
var (
	searchService   driving.SearchService
	categoryService driving.CategoryService
	fatwaService    driving.FatwaService
	settingsService driving.SettingsService

	// application is set when the pre-run hook opened the stores.
	application *app.App

	// openApp is swapped out in tests.
	openApp = app.Open
)

var rootCmd = &cobra.Command{
	Use:   "mufti",
	Short: "Bilingual fatwa store and search engine",
	Long: `Mufti stores fatwas in Arabic and English, organises them in a
category tree and searches them through a cascade of retrieval methods:
a semantic ranking oracle, a full-text index and substring matching.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "directory holding config.toml (default ~/.mufti)")
	flags.StringVar(&dataDir, "data-dir", "", "directory holding the database (overrides storage.data_dir)")
	flags.StringVar(&storage, "storage", "", "storage backend: sqlite or memory (overrides storage.backend)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "trace search and storage decisions on stderr")
}

// Execute runs the root command with the given build version.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	// cobra prints to stderr unless told otherwise; results belong on stdout.
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// needsServices reports whether cmd touches the stores.
func needsServices(cmd *cobra.Command) bool {
	return cmd.Annotations["services"] != "none"
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if !needsServices(cmd) || searchService != nil {
		return nil
	}

	a, err := openApp(app.Options{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Storage:   domain.StorageBackend(storage),
	})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}

	application = a
	searchService = a.Search
	categoryService = a.Categories
	fatwaService = a.Fatwas
	settingsService = a.Settings
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	searchService, categoryService, fatwaService, settingsService = nil, nil, nil, nil
	return err
}
