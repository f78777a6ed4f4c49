package domain

import "strings"

// Span is a half-open [Start, End) byte range in the plain-text
// projection.
type Span struct {
	// Start is the inclusive start offset.
	Start int

	// End is the exclusive end offset.
	End int
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Window is the bounded, ephemeral slice of the plain-text projection
// sent to the analysis service for a single call. It is derived on
// demand and never persisted.
type Window struct {
	// Text is the window content.
	Text string

	// Start is the plain-text offset of Text's first byte.
	Start int

	// End is the exclusive plain-text end offset.
	End int
}

// WordCount returns the number of whitespace-separated words.
func (w Window) WordCount() int {
	return len(strings.Fields(w.Text))
}

// Fingerprint returns the window's content fingerprint for a category.
func (w Window) Fingerprint(category Category) Fingerprint {
	return FingerprintText(category, w.Text)
}
