package driving

import "github.com/draftaid-io/draftaid/internal/core/domain"

// SettingsService manages engine and provider configuration.
type SettingsService interface {
	// Engine returns the engine settings, with defaults filled in.
	Engine() domain.Settings

	// Provider returns the analysis provider settings.
	Provider() *domain.ProviderSettings

	// SaveProvider persists provider settings.
	SaveProvider(settings *domain.ProviderSettings) error

	// SetProvider validates and persists a provider selection.
	SetProvider(provider domain.AnalysisProvider, model, apiKey string) error
}
