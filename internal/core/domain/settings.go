package domain

import "time"

const unknownDescription = "Unknown"

// StorageBackend selects the document store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists to a SQLite database with an FTS5 text index.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (persistent, FTS5 text index)"
	case StorageMemory:
		return "Memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds document store configuration.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the database file. Empty means ~/.mufti/data.
	DataDir string
}

// OracleSettings holds ranking oracle client configuration.
type OracleSettings struct {
	// BaseURL is the oracle endpoint. Empty disables the oracle tier.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RatePerSecond and Burst pace outgoing requests.
	RatePerSecond float64
	Burst         int

	// BackfillInterval is how often `serve` indexes fatwas the oracle has
	// not seen yet. Zero disables the backfill task.
	BackfillInterval time.Duration
}

// IsConfigured returns true if the oracle tier can be used.
func (o OracleSettings) IsConfigured() bool {
	return o.BaseURL != ""
}

// SearchTuning holds the budgets of the search cascade.
type SearchTuning struct {
	// OracleLimit is the number of ids requested from the oracle. It must be
	// large enough that pagination over the oracle list is exact.
	OracleLimit int

	// OracleTimeout bounds the oracle tier.
	OracleTimeout time.Duration

	// StoreTimeout bounds each store query (text, pattern, hydration).
	StoreTimeout time.Duration

	// DefaultPageSize is used by boundaries when the caller gives none.
	DefaultPageSize int
}

// TranslateSettings holds translation service configuration.
type TranslateSettings struct {
	BaseURL string
	APIKey  string
	Model   string
}

// IsConfigured returns true if translation can be used.
func (t TranslateSettings) IsConfigured() bool {
	return t.APIKey != ""
}

// HTTPSettings holds the HTTP API configuration.
type HTTPSettings struct {
	Addr           string
	AllowedOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Oracle    OracleSettings
	Search    SearchTuning
	Translate TranslateSettings
	HTTP      HTTPSettings
}

// DefaultSearchTuning returns the default cascade budgets.
func DefaultSearchTuning() SearchTuning {
	return SearchTuning{
		OracleLimit:     1000,
		OracleTimeout:   3 * time.Second,
		StoreTimeout:    5 * time.Second,
		DefaultPageSize: DefaultPageSize,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// The oracle and translator are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Oracle: OracleSettings{
			Timeout:          10 * time.Second,
			RatePerSecond:    20,
			Burst:            40,
			BackfillInterval: 15 * time.Minute,
		},
		Search: DefaultSearchTuning(),
		Translate: TranslateSettings{
			Model: "gpt-4o-mini",
		},
		HTTP: HTTPSettings{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
}
