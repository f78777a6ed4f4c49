package driven

import (
	"context"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

// DecisionStore records accept/dismiss decisions and answers the
// dismissed-fragment suppression query. Suppression is best-effort: a
// dismissed suggestion may still resurface after enough editing.
type DecisionStore interface {
	// Record stores a decision.
	Record(ctx context.Context, decision *domain.Decision) error

	// List returns the most recent decisions, newest first.
	List(ctx context.Context, limit int) ([]domain.Decision, error)

	// WasDismissed reports whether an identical fragment was dismissed
	// for the category. Fragments are compared whitespace-normalised.
	WasDismissed(ctx context.Context, category domain.Category, fragment string) (bool, error)

	// Close releases resources.
	Close() error
}
