package services

import (
	"fmt"
	"time"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
	"github.com/draftaid-io/draftaid/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyProvider       = "provider.name"
	keyProviderModel  = "provider.model"
	keyProviderURL    = "provider.base_url"
	keyProviderAPIKey = "provider.api_key"
	keyProviderRPM    = "provider.requests_per_minute"
	keyCategories     = "engine.categories"
	keyDebounceBase   = "engine.debounce"
	keyDebounceMin    = "engine.debounce_min"
	keyDebounceMax    = "engine.debounce_max"
	keyCacheSize      = "engine.cache_size"
	keyCacheTTL       = "engine.cache_ttl"
)

// SettingsService manages application settings on top of a config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Engine returns the engine settings, with defaults filled in.
func (s *SettingsService) Engine() domain.Settings {
	settings := domain.DefaultSettings()

	if names := s.configStore.GetStringSlice(keyCategories); len(names) > 0 {
		var categories []domain.Category
		for _, name := range names {
			c := domain.Category(name)
			if c.IsTopLevel() {
				categories = append(categories, c)
			}
		}
		if len(categories) > 0 {
			settings.Categories = categories
		}
	}

	settings.DebounceBase = s.getDuration(keyDebounceBase, settings.DebounceBase)
	settings.DebounceMin = s.getDuration(keyDebounceMin, settings.DebounceMin)
	settings.DebounceMax = s.getDuration(keyDebounceMax, settings.DebounceMax)
	settings.CacheTTL = s.getDuration(keyCacheTTL, settings.CacheTTL)
	if size := s.configStore.GetInt(keyCacheSize); size > 0 {
		settings.CacheSize = size
	}

	settings.Normalise()
	return settings
}

// Provider returns the analysis provider settings.
func (s *SettingsService) Provider() *domain.ProviderSettings {
	return &domain.ProviderSettings{
		Provider:          domain.AnalysisProvider(s.configStore.GetString(keyProvider)),
		Model:             s.configStore.GetString(keyProviderModel),
		BaseURL:           s.configStore.GetString(keyProviderURL),
		APIKey:            s.configStore.GetString(keyProviderAPIKey),
		RequestsPerMinute: s.configStore.GetInt(keyProviderRPM),
	}
}

// SaveProvider persists provider settings.
func (s *SettingsService) SaveProvider(settings *domain.ProviderSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}

	if err := s.configStore.Set(keyProvider, settings.Provider.String()); err != nil {
		return fmt.Errorf("save provider: %w", err)
	}
	if err := s.configStore.Set(keyProviderModel, settings.Model); err != nil {
		return fmt.Errorf("save provider model: %w", err)
	}
	if err := s.configStore.Set(keyProviderURL, settings.BaseURL); err != nil {
		return fmt.Errorf("save provider base_url: %w", err)
	}
	if settings.APIKey != "" {
		if err := s.configStore.Set(keyProviderAPIKey, settings.APIKey); err != nil {
			return fmt.Errorf("save provider api_key: %w", err)
		}
	}
	if settings.RequestsPerMinute > 0 {
		if err := s.configStore.Set(keyProviderRPM, settings.RequestsPerMinute); err != nil {
			return fmt.Errorf("save provider requests_per_minute: %w", err)
		}
	}
	return nil
}

// SetProvider validates and persists a provider selection.
func (s *SettingsService) SetProvider(provider domain.AnalysisProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.Provider()
	settings.Provider = provider
	settings.Model = model
	settings.APIKey = apiKey

	// Local providers keep their base URL; cloud providers use the
	// adapter default unless one was configured explicitly.
	if provider.RequiresAPIKey() {
		settings.BaseURL = ""
	}

	return s.SaveProvider(settings)
}

// getDuration reads a duration string value ("900ms", "2s"), falling
// back to defaultVal when absent or malformed.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
