package driving

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetOracle configures the ranking oracle endpoint.
	SetOracle(baseURL, apiKey string) error

	// SetTranslator configures the translation service.
	SetTranslator(baseURL, model, apiKey string) error

	// SetStorage selects the storage backend and data directory.
	SetStorage(backend domain.StorageBackend, dataDir string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateOracle pings the configured oracle.
	ValidateOracle(ctx context.Context) error
}
