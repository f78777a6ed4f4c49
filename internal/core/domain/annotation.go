package domain

// Annotation is the live projection of a Suggestion onto the document:
// a suggestion mark over a [From, To) document-position range. It is
// created when the suggestion's original text is located in the current
// projection and destroyed on accept, dismiss, a category refresh, or
// when the covered text is edited away.
//
// Within a category annotation ranges are disjoint; across categories
// they may overlap.
type Annotation struct {
	// ID is the unique identifier for the annotation.
	ID string

	// Suggestion is the immutable suggestion this annotation renders.
	Suggestion Suggestion

	// Category mirrors the suggestion's top-level category. It keys the
	// overlay partition the annotation lives in.
	Category Category

	// From is the inclusive start document position.
	From int

	// To is the exclusive end document position.
	To int
}

// Mark builds the document mark that renders this annotation.
func (a Annotation) Mark() Mark {
	return Mark{
		Type:         MarkTypeSuggestion,
		Category:     a.Category,
		AnnotationID: a.ID,
		Attrs: map[string]string{
			"severity":    a.Suggestion.Severity.String(),
			"explanation": a.Suggestion.Explanation,
		},
	}
}

// Overlaps reports whether the annotation's range intersects [from, to).
func (a Annotation) Overlaps(from, to int) bool {
	return a.From < to && from < a.To
}
