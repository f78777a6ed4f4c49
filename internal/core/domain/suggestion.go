package domain

import "fmt"

// Suggestion is an immutable value produced by one analysis call.
// It is never mutated after creation, only superseded or discarded.
type Suggestion struct {
	// ID is the unique identifier, stamped by the engine.
	ID string

	// Category classifies the suggestion. Stamped by the engine except
	// for self-reported coaching sub-categories.
	Category Category

	// Severity indicates how strongly to surface the suggestion.
	Severity Severity

	// Original is the exact text fragment the suggestion applies to,
	// as echoed back by the analysis service.
	Original string

	// Replacement is the proposed substitute text. Empty for
	// coaching-only categories.
	Replacement string

	// Explanation is the human-readable rationale.
	Explanation string
}

// Validate checks structural validity at the service boundary.
func (s *Suggestion) Validate() error {
	if s.Original == "" {
		return fmt.Errorf("%w: suggestion has empty original text", ErrInvalidInput)
	}
	if !s.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s.Category)
	}
	if s.Replacement == "" && s.Category.CanReplace() {
		return fmt.Errorf("%w: category %s requires replacement text", ErrInvalidInput, s.Category)
	}
	return nil
}

// HasReplacement returns true if accepting this suggestion edits the
// document.
func (s Suggestion) HasReplacement() bool {
	return s.Replacement != "" && s.Category.CanReplace()
}
