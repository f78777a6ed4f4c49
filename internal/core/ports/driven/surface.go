package driven

import "github.com/draftaid-io/draftaid/internal/core/domain"

// EditorSurface is the engine's view of the editing surface that owns
// the document. Reads return consistent snapshots; mutations are single
// synchronous steps and must never be interleaved by the caller.
//
// Range arguments are document positions (the boundary-slot addressing
// described on domain.Document), not plain-text offsets.
type EditorSurface interface {
	// Snapshot returns a deep copy of the current document.
	Snapshot() *domain.Document

	// PlainText returns the current plain-text projection.
	PlainText() string

	// CaretOffset returns the caret as a plain-text offset.
	CaretOffset() int

	// ReplaceRange replaces [from, to) with text.
	ReplaceRange(from, to int, text string) error

	// ApplyMark decorates [from, to) with the mark.
	ApplyMark(from, to int, mark domain.Mark) error

	// ClearMarks removes marks of the named type overlapping [from, to).
	ClearMarks(markType string, from, to int) error

	// OnChange registers a change-notification callback, invoked after
	// every mutation including the engine's own.
	OnChange(fn func())
}
