package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/draftaid-io/draftaid/internal/adapters/driven/analysis/anthropic"
	"github.com/draftaid-io/draftaid/internal/adapters/driven/analysis/ollama"
	"github.com/draftaid-io/draftaid/internal/adapters/driven/analysis/openai"
	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateService creates an analysis service and validates
// connectivity. Returns the service if successful, or an error with
// guidance.
func CreateAndValidateService(settings *domain.ProviderSettings) (driven.AnalysisService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'draftaid config' to fix",
			domain.ErrAnalysisUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'draftaid config' to fix",
			domain.ErrAnalysisUnavailable, err)
	}

	return svc, nil
}

// ValidateConfig validates a provider configuration by creating a
// service and pinging it. Intended for use when credentials are first
// configured.
func ValidateConfig(settings *domain.ProviderSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateService creates the appropriate analysis service based on
// settings, wrapped with the configured rate limit. Returns nil if the
// provider is not configured.
func CreateService(settings *domain.ProviderSettings) (driven.AnalysisService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.AnalysisService
	var err error

	switch settings.Provider {
	case domain.ProviderOllama:
		svc = ollama.NewAnalysisService(ollama.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.ProviderOpenAI:
		svc, err = openai.NewAnalysisService(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.ProviderAnthropic:
		svc, err = anthropic.NewAnalysisService(anthropic.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRateLimit(svc, settings.RequestsPerMinute), nil
}
