package driving

import (
	"context"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

// SuggestionEngine is the driving port of the reconciliation engine.
// One instance serves one open document.
type SuggestionEngine interface {
	// DocumentChanged notifies the engine of an edit on the surface.
	// Pure orchestration: it never mutates the document itself.
	DocumentChanged()

	// Flush runs every scheduled category immediately, bypassing the
	// remaining debounce, and waits for the results to reconcile.
	Flush(ctx context.Context) error

	// Accept applies a suggestion: replaces the annotated range with
	// the replacement text (no-op on the document for coaching
	// categories) and destroys the annotation. An annotation whose
	// text can no longer be located is dropped silently.
	Accept(ctx context.Context, annotationID string) error

	// Dismiss destroys a single annotation without touching the
	// document and remembers the fragment for best-effort suppression.
	Dismiss(ctx context.Context, annotationID string) error

	// Annotations returns a read-only snapshot of active annotations,
	// optionally filtered by category.
	Annotations(category ...domain.Category) []domain.Annotation

	// CategoryStatus returns the scheduling state for a category.
	CategoryStatus(category domain.Category) domain.CategoryStatus

	// Close stops timers and waits for in-flight work.
	Close() error
}
