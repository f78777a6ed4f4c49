package driven

import (
	"context"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

// AnalysisService is the engine's only outbound call: it sends a text
// window and receives suggestions for one category.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT models)
//   - Ollama (local models)
//
// Implementations validate response payloads at the boundary and filter
// structurally invalid items rather than failing the call. The returned
// category is advisory: the engine re-stamps it except for coaching
// sub-categories of the requested category.
type AnalysisService interface {
	// Analyze returns suggestions for the given category and text.
	Analyze(ctx context.Context, category domain.Category, text string) ([]domain.Suggestion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request that runs no inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
