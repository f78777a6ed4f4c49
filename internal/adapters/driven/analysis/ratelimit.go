package analysis

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
)

// Ensure rateLimitedService implements the interface.
var _ driven.AnalysisService = (*rateLimitedService)(nil)

// rateLimitedService wraps an analysis service with a token-bucket
// limiter so debounced passes across categories cannot burst past the
// provider's quota.
type rateLimitedService struct {
	inner   driven.AnalysisService
	limiter *rate.Limiter
}

// WithRateLimit wraps svc so Analyze calls are spaced to at most
// requestsPerMinute. A non-positive limit returns svc unchanged.
func WithRateLimit(svc driven.AnalysisService, requestsPerMinute int) driven.AnalysisService {
	if requestsPerMinute <= 0 {
		return svc
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &rateLimitedService{
		inner:   svc,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Analyze waits for a limiter token, then delegates.
func (s *rateLimitedService) Analyze(ctx context.Context, category domain.Category, text string) ([]domain.Suggestion, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Analyze(ctx, category, text)
}

// ModelName returns the wrapped service's model name.
func (s *rateLimitedService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates without consuming a limiter token.
func (s *rateLimitedService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the wrapped service's resources.
func (s *rateLimitedService) Close() error {
	return s.inner.Close()
}
