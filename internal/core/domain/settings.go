package domain

import "time"

// Settings tunes the reconciliation engine. Zero values are replaced by
// the corresponding defaults in Normalise.
type Settings struct {
	// Categories are the top-level categories to analyse.
	Categories []Category

	// DebounceBase is the starting debounce for a qualifying edit.
	DebounceBase time.Duration

	// DebounceMin and DebounceMax bound the adaptive debounce.
	DebounceMin time.Duration
	DebounceMax time.Duration

	// ShortDebounce is used after an accept, where a quick follow-up
	// pass is wanted.
	ShortDebounce time.Duration

	// MinLengthDelta filters single-keystroke noise: the absolute
	// change in projection length since the last analysed pass must
	// exceed it before a pass is scheduled.
	MinLengthDelta int

	// MinWindowChars and MinWindowWords gate trivially small windows.
	MinWindowChars int
	MinWindowWords int

	// MaxWindowChars caps boundary-extended windows in each direction
	// from the caret.
	MaxWindowChars int

	// FallbackWindowChars is the fixed half-width used when no sentence
	// or paragraph boundary is found near the caret.
	FallbackWindowChars int

	// EdgeZoneChars widens the window to the nearer document boundary
	// when the caret falls within this distance of it.
	EdgeZoneChars int

	// LargeEditChars is the length delta (paste, large delete) beyond
	// which the debounce is stretched.
	LargeEditChars int

	// LongDocumentChars is the projection length beyond which the
	// debounce is stretched.
	LongDocumentChars int

	// CacheSize bounds the request cache entry count.
	CacheSize int

	// CacheTTL expires cached analysis results.
	CacheTTL time.Duration
}

// DefaultSettings returns sensible engine defaults.
func DefaultSettings() Settings {
	return Settings{
		Categories:          AnalysisCategories(),
		DebounceBase:        900 * time.Millisecond,
		DebounceMin:         300 * time.Millisecond,
		DebounceMax:         3 * time.Second,
		ShortDebounce:       150 * time.Millisecond,
		MinLengthDelta:      2,
		MinWindowChars:      40,
		MinWindowWords:      5,
		MaxWindowChars:      1200,
		FallbackWindowChars: 400,
		EdgeZoneChars:       200,
		LargeEditChars:      120,
		LongDocumentChars:   8000,
		CacheSize:           64,
		CacheTTL:            10 * time.Minute,
	}
}

// Normalise fills zero values with defaults and clamps inconsistent
// bounds.
func (s *Settings) Normalise() {
	def := DefaultSettings()
	if len(s.Categories) == 0 {
		s.Categories = def.Categories
	}
	if s.DebounceBase <= 0 {
		s.DebounceBase = def.DebounceBase
	}
	if s.DebounceMin <= 0 {
		s.DebounceMin = def.DebounceMin
	}
	if s.DebounceMax < s.DebounceMin {
		s.DebounceMax = def.DebounceMax
	}
	if s.ShortDebounce <= 0 {
		s.ShortDebounce = def.ShortDebounce
	}
	if s.MinLengthDelta <= 0 {
		s.MinLengthDelta = def.MinLengthDelta
	}
	if s.MinWindowChars <= 0 {
		s.MinWindowChars = def.MinWindowChars
	}
	if s.MinWindowWords <= 0 {
		s.MinWindowWords = def.MinWindowWords
	}
	if s.MaxWindowChars <= 0 {
		s.MaxWindowChars = def.MaxWindowChars
	}
	if s.FallbackWindowChars <= 0 || s.FallbackWindowChars > s.MaxWindowChars {
		s.FallbackWindowChars = def.FallbackWindowChars
	}
	if s.EdgeZoneChars <= 0 {
		s.EdgeZoneChars = def.EdgeZoneChars
	}
	if s.LargeEditChars <= 0 {
		s.LargeEditChars = def.LargeEditChars
	}
	if s.LongDocumentChars <= 0 {
		s.LongDocumentChars = def.LongDocumentChars
	}
	if s.CacheSize <= 0 {
		s.CacheSize = def.CacheSize
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = def.CacheTTL
	}
}

// AnalysisProvider identifies an analysis-service provider.
type AnalysisProvider string

// Available providers.
const (
	// ProviderAnthropic is the Anthropic cloud API.
	ProviderAnthropic AnalysisProvider = "anthropic"

	// ProviderOpenAI is the OpenAI cloud API.
	ProviderOpenAI AnalysisProvider = "openai"

	// ProviderOllama is a local Ollama instance.
	ProviderOllama AnalysisProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p AnalysisProvider) IsValid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AnalysisProvider) RequiresAPIKey() bool {
	return p == ProviderAnthropic || p == ProviderOpenAI
}

// String returns the string representation.
func (p AnalysisProvider) String() string {
	return string(p)
}

// ProviderSettings configures the external analysis service.
type ProviderSettings struct {
	// Provider selects the adapter.
	Provider AnalysisProvider

	// APIKey authenticates cloud providers.
	APIKey string

	// Model overrides the provider's default model.
	Model string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RequestsPerMinute limits outbound analysis calls. Zero disables
	// the limiter.
	RequestsPerMinute int
}

// IsConfigured returns true if the settings name a usable provider.
func (p *ProviderSettings) IsConfigured() bool {
	if p == nil || !p.Provider.IsValid() {
		return false
	}
	if p.Provider.RequiresAPIKey() && p.APIKey == "" {
		return false
	}
	return true
}
