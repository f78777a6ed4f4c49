package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestion_Validate(t *testing.T) {
	s := Suggestion{
		Category:    CategoryGrammar,
		Severity:    SeverityError,
		Original:    "jump over",
		Replacement: "jumps over",
	}
	require.NoError(t, s.Validate())
}

func TestSuggestion_Validate_EmptyOriginal(t *testing.T) {
	s := Suggestion{Category: CategoryGrammar, Replacement: "x"}

	err := s.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSuggestion_Validate_UnknownCategory(t *testing.T) {
	s := Suggestion{Category: "style", Original: "x", Replacement: "y"}

	err := s.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSuggestion_Validate_ReplacingCategoryNeedsReplacement(t *testing.T) {
	s := Suggestion{Category: CategoryGrammar, Original: "x"}
	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)

	// Coaching categories carry no replacement.
	s = Suggestion{Category: CategoryUnsupportedClaim, Original: "x"}
	assert.NoError(t, s.Validate())
}

func TestSuggestion_HasReplacement(t *testing.T) {
	s := Suggestion{Category: CategoryTone, Original: "x", Replacement: "y"}
	assert.True(t, s.HasReplacement())

	s.Replacement = ""
	assert.False(t, s.HasReplacement())

	// Replacement text on a coaching category never edits the document.
	s = Suggestion{Category: CategoryLogicalFallacy, Original: "x", Replacement: "y"}
	assert.False(t, s.HasReplacement())
}
