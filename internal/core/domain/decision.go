package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DecisionAction is what the user did with a suggestion.
type DecisionAction string

// Available actions.
const (
	// DecisionAccepted means the suggestion was applied (or, for
	// coaching categories, acknowledged).
	DecisionAccepted DecisionAction = "accepted"

	// DecisionDismissed means the suggestion was rejected without
	// touching the document.
	DecisionDismissed DecisionAction = "dismissed"
)

// Decision is the audit record of a user acting on a suggestion. It
// snapshots the suggestion so the record survives the annotation's
// destruction, and it feeds the best-effort suppression of dismissed
// fragments.
type Decision struct {
	// ID is the unique identifier for the decision.
	ID string

	// Action is what the user did.
	Action DecisionAction

	// Category is the suggestion's category.
	Category Category

	// Original is the fragment the suggestion targeted.
	Original string

	// Replacement is the replacement text, if any.
	Replacement string

	// Explanation is the suggestion's rationale.
	Explanation string

	// Severity is the suggestion's severity.
	Severity Severity

	// DecidedAt is when the user acted.
	DecidedAt time.Time
}

// NormaliseFragment collapses runs of whitespace to single spaces so
// dismissed-fragment lookups tolerate reflowed text.
func NormaliseFragment(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NewDecision builds a decision record from a suggestion.
func NewDecision(action DecisionAction, s Suggestion) *Decision {
	return &Decision{
		ID:          uuid.New().String(),
		Action:      action,
		Category:    s.Category,
		Original:    s.Original,
		Replacement: s.Replacement,
		Explanation: s.Explanation,
		Severity:    s.Severity,
		DecidedAt:   time.Now(),
	}
}
