package driving

import "github.com/all-black-493/supportly/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error

	// SetAPIKey maps a bearer token to an organisation.
	SetAPIKey(token, orgID string) error

	// ResolveAPIKey returns the organisation for a bearer token.
	ResolveAPIKey(token string) (string, bool)

	// Validate checks the settings can start the service.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
