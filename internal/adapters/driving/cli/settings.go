package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

var settingsJSON bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, the ranking oracle, translation and the
HTTP API. Settings live in ~/.mufti/config.toml.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure storage, oracle and translation step by step.`,
	RunE:  runSettingsWizard,
}

var settingsStorageCmd = &cobra.Command{
	Use:   "storage [backend]",
	Short: "Select the storage backend",
	Long: `Select where fatwas and categories are stored.

Available backends:
  sqlite  - SQLite database with a full-text index (default)
  memory  - in-process only, lost on exit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsStorage,
}

var settingsOracleCmd = &cobra.Command{
	Use:   "oracle [base-url]",
	Short: "Configure the ranking oracle",
	Long: `Configure the semantic ranking oracle used as the first search tier.
An empty URL disables the oracle; search then starts at the text index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsOracle,
}

var settingsTranslateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Configure machine translation",
	Long:  `Configure the OpenAI-compatible service used to fill missing English fields.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsTranslate,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the ranking oracle is reachable",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.PersistentFlags().BoolVar(&settingsJSON, "json", false, "output settings as JSON")

	settingsStorageCmd.Flags().String("data-dir", "", "directory for the database file")
	settingsOracleCmd.Flags().Bool("no-key", false, "do not prompt for an API key")
	settingsTranslateCmd.Flags().String("base-url", "", "API base URL (default: OpenAI)")
	settingsTranslateCmd.Flags().String("model", "", "model name")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsStorageCmd)
	settingsCmd.AddCommand(settingsOracleCmd)
	settingsCmd.AddCommand(settingsTranslateCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsView is the JSON shape of the settings; API keys are masked.
type settingsView struct {
	Storage struct {
		Backend string `json:"backend"`
		DataDir string `json:"dataDir,omitempty"`
	} `json:"storage"`
	Oracle struct {
		BaseURL          string  `json:"baseUrl,omitempty"`
		APIKey           string  `json:"apiKey,omitempty"`
		TimeoutMS        int64   `json:"timeoutMs"`
		RatePerSecond    float64 `json:"ratePerSecond"`
		Burst            int     `json:"burst"`
		BackfillInterval string  `json:"backfillInterval"`
	} `json:"oracle"`
	Search struct {
		OracleLimit     int   `json:"oracleLimit"`
		OracleTimeoutMS int64 `json:"oracleTimeoutMs"`
		StoreTimeoutMS  int64 `json:"storeTimeoutMs"`
		DefaultPageSize int   `json:"defaultPageSize"`
	} `json:"search"`
	Translate struct {
		BaseURL string `json:"baseUrl,omitempty"`
		APIKey  string `json:"apiKey,omitempty"`
		Model   string `json:"model"`
	} `json:"translate"`
	HTTP struct {
		Addr           string   `json:"addr"`
		AllowedOrigins []string `json:"allowedOrigins"`
	} `json:"http"`
}

func newSettingsView(s *domain.AppSettings) settingsView {
	var v settingsView
	v.Storage.Backend = s.Storage.Backend.String()
	v.Storage.DataDir = s.Storage.DataDir
	v.Oracle.BaseURL = s.Oracle.BaseURL
	if s.Oracle.APIKey != "" {
		v.Oracle.APIKey = maskAPIKey(s.Oracle.APIKey)
	}
	v.Oracle.TimeoutMS = s.Oracle.Timeout.Milliseconds()
	v.Oracle.RatePerSecond = s.Oracle.RatePerSecond
	v.Oracle.Burst = s.Oracle.Burst
	v.Oracle.BackfillInterval = s.Oracle.BackfillInterval.String()
	v.Search.OracleLimit = s.Search.OracleLimit
	v.Search.OracleTimeoutMS = s.Search.OracleTimeout.Milliseconds()
	v.Search.StoreTimeoutMS = s.Search.StoreTimeout.Milliseconds()
	v.Search.DefaultPageSize = s.Search.DefaultPageSize
	v.Translate.BaseURL = s.Translate.BaseURL
	if s.Translate.APIKey != "" {
		v.Translate.APIKey = maskAPIKey(s.Translate.APIKey)
	}
	v.Translate.Model = s.Translate.Model
	v.HTTP.Addr = s.HTTP.Addr
	v.HTTP.AllowedOrigins = s.HTTP.AllowedOrigins
	return v
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// Piped output is for scripts.
	if settingsJSON || !isTerminal(cmd.OutOrStdout()) {
		return outputJSON(cmd, newSettingsView(settings))
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	}
	cmd.Println()

	cmd.Println("[Oracle]")
	if settings.Oracle.IsConfigured() {
		cmd.Printf("  Base URL: %s\n", settings.Oracle.BaseURL)
		cmd.Printf("  API Key: %s\n", keyStatus(settings.Oracle.APIKey))
		cmd.Printf("  Timeout: %s\n", settings.Oracle.Timeout)
		cmd.Printf("  Rate: %.1f/s (burst %d)\n", settings.Oracle.RatePerSecond, settings.Oracle.Burst)
		cmd.Printf("  Backfill: every %s\n", settings.Oracle.BackfillInterval)
	} else {
		cmd.Println("  Status: not configured (search starts at the text index)")
	}
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Oracle limit: %d\n", settings.Search.OracleLimit)
	cmd.Printf("  Oracle timeout: %s\n", settings.Search.OracleTimeout)
	cmd.Printf("  Store timeout: %s\n", settings.Search.StoreTimeout)
	cmd.Printf("  Page size: %d\n", settings.Search.DefaultPageSize)
	cmd.Println()

	cmd.Println("[Translate]")
	cmd.Printf("  Model: %s\n", settings.Translate.Model)
	if settings.Translate.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Translate.BaseURL)
	}
	cmd.Printf("  API Key: %s\n", keyStatus(settings.Translate.APIKey))
	cmd.Println()

	cmd.Println("[HTTP]")
	cmd.Printf("  Address: %s\n", settings.HTTP.Addr)
	cmd.Printf("  Allowed origins: %s\n", strings.Join(settings.HTTP.AllowedOrigins, ", "))

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Mufti Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	// Step 1: Storage
	cmd.Println("Step 1: Select Storage Backend")
	cmd.Println("------------------------------")
	backend := chooseBackend(cmd, reader, 1)
	if err := settingsService.SetStorage(backend, ""); err != nil {
		return fmt.Errorf("failed to set storage: %w", err)
	}
	cmd.Printf("Storage set to: %s\n\n", backend.Description())

	// Step 2: Oracle
	cmd.Println("Step 2: Ranking Oracle")
	cmd.Println("----------------------")
	cmd.Print("Enter oracle base URL (empty to skip): ")
	baseURL := readLine(reader)
	if baseURL != "" {
		cmd.Print("Enter oracle API key (empty for none): ")
		apiKey := readPassword(in, reader)
		cmd.Println()
		if err := configureOracle(cmd, baseURL, apiKey); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped. Search will start at the text index.")
	}
	cmd.Println()

	// Step 3: Translation
	cmd.Println("Step 3: Translation")
	cmd.Println("-------------------")
	cmd.Print("Enter OpenAI API key (empty to skip): ")
	translateKey := readPassword(in, reader)
	cmd.Println()
	if translateKey != "" {
		if err := settingsService.SetTranslator("", "", translateKey); err != nil {
			return fmt.Errorf("failed to configure translation: %w", err)
		}
		cmd.Println("Translation configured.")
	} else {
		cmd.Println("Skipped. Fatwas will only be translated by hand.")
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	return nil
}

func runSettingsStorage(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var backend domain.StorageBackend
	if len(args) > 0 {
		backend = domain.StorageBackend(strings.ToLower(args[0]))
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		backend = chooseBackend(cmd, reader, 0)
		if backend == "" {
			return errors.New("invalid selection")
		}
	}

	dir, _ := cmd.Flags().GetString("data-dir") //nolint:errcheck // flag is registered above
	if err := settingsService.SetStorage(backend, dir); err != nil {
		return fmt.Errorf("failed to set storage: %w", err)
	}

	cmd.Printf("Storage backend set to: %s\n", backend.Description())
	return nil
}

func runSettingsOracle(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	baseURL := ""
	if len(args) > 0 {
		baseURL = strings.TrimSpace(args[0])
	}
	if baseURL == "" {
		if err := settingsService.SetOracle("", ""); err != nil {
			return fmt.Errorf("failed to disable oracle: %w", err)
		}
		cmd.Println("Ranking oracle disabled.")
		return nil
	}

	var apiKey string
	if noKey, _ := cmd.Flags().GetBool("no-key"); !noKey { //nolint:errcheck // flag is registered above
		in := cmd.InOrStdin()
		cmd.Print("Enter oracle API key (empty to keep current): ")
		apiKey = readPassword(in, bufio.NewReader(in))
		cmd.Println()
	}

	return configureOracle(cmd, baseURL, apiKey)
}

func configureOracle(cmd *cobra.Command, baseURL, apiKey string) error {
	if err := settingsService.SetOracle(baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure oracle: %w", err)
	}

	// Validate the configuration by pinging the service. An unreachable
	// oracle is not fatal: search degrades to the text index.
	cmd.Print("Validating configuration... ")
	if err := pingOracle(cmd.Context()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		cmd.Println("The oracle was saved; search will skip it until it is reachable.")
		return nil
	}
	cmd.Println("OK")

	cmd.Printf("Ranking oracle configured: %s\n", baseURL)
	return nil
}

func runSettingsTranslate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	baseURL, _ := cmd.Flags().GetString("base-url") //nolint:errcheck // flag is registered above
	model, _ := cmd.Flags().GetString("model")      //nolint:errcheck // flag is registered above

	in := cmd.InOrStdin()
	cmd.Print("Enter API key: ")
	apiKey := readPassword(in, bufio.NewReader(in))
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for translation")
	}

	if err := settingsService.SetTranslator(baseURL, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure translation: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	cmd.Printf("Translation configured: %s\n", settings.Translate.Model)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := pingOracle(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Ranking oracle is reachable.")
	return nil
}

func pingOracle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return settingsService.ValidateOracle(ctx)
}

func chooseBackend(cmd *cobra.Command, reader *bufio.Reader, defaultChoice int) domain.StorageBackend {
	backends := []domain.StorageBackend{domain.StorageSQLite, domain.StorageMemory}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	if defaultChoice > 0 {
		cmd.Printf("\nEnter choice [%d]: ", defaultChoice)
	} else {
		cmd.Print("\nEnter choice: ")
	}
	idx := parseChoice(readLine(reader), len(backends), defaultChoice)
	if idx == 0 {
		return ""
	}
	return backends[idx-1]
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is a terminal and falls
// back to a plain line otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func keyStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
