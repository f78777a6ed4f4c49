// Package memory provides an in-memory implementation of the editing
// surface: a document tree with a caret, marks and change
// notifications. It stands in for the browser editor in the CLI and in
// tests.
package memory

import (
	"fmt"
	"sync"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
)

// Ensure Surface implements the interface.
var _ driven.EditorSurface = (*Surface)(nil)

// Surface owns a document and exposes the narrow mutation contract the
// engine relies on. Change callbacks run after the internal lock is
// released, so a callback may read the surface freely.
type Surface struct {
	mu        sync.RWMutex
	doc       *domain.Document
	caret     int
	callbacks []func()
}

// NewSurface creates a surface owning the given document. A nil
// document starts as a single empty paragraph.
func NewSurface(doc *domain.Document) *Surface {
	if doc == nil {
		doc = domain.NewTextDocument()
	}
	return &Surface{doc: doc}
}

// Snapshot returns a deep copy of the current document.
func (s *Surface) Snapshot() *domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// PlainText returns the current plain-text projection.
func (s *Surface) PlainText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.PlainText()
}

// CaretOffset returns the caret as a plain-text offset.
func (s *Surface) CaretOffset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caret
}

// SetCaret moves the caret to a plain-text offset, clamped to the
// projection.
func (s *Surface) SetCaret(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if n := s.doc.PlainLength(); offset > n {
		offset = n
	}
	s.caret = offset
}

// ReplaceRange replaces the [from, to) document-position range with
// text and notifies change listeners.
func (s *Surface) ReplaceRange(from, to int, text string) error {
	s.mu.Lock()
	if err := s.doc.ReplaceRange(from, to, text); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// ApplyMark decorates the [from, to) document-position range and
// notifies change listeners.
func (s *Surface) ApplyMark(from, to int, mark domain.Mark) error {
	s.mu.Lock()
	if err := s.doc.ApplyMark(from, to, mark); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// ClearMarks removes marks of the named type overlapping [from, to)
// and notifies change listeners.
func (s *Surface) ClearMarks(markType string, from, to int) error {
	s.mu.Lock()
	if err := s.doc.ClearMarks(markType, from, to); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// OnChange registers a change-notification callback.
func (s *Surface) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// EditPlain replaces the [start, end) plain-text range with text and
// moves the caret to the end of the inserted text. This is the typing
// entry point for the CLI and tests.
func (s *Surface) EditPlain(start, end int, text string) error {
	s.mu.Lock()
	from, err := s.doc.DocumentPosition(start)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("edit start: %w", err)
	}
	to, err := s.doc.DocumentPosition(end)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("edit end: %w", err)
	}
	if err := s.doc.ReplaceRange(from, to, text); err != nil {
		s.mu.Unlock()
		return err
	}
	s.caret = start + len(text)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetDocument swaps in a new document, resets the caret to its end,
// and notifies change listeners.
func (s *Surface) SetDocument(doc *domain.Document) {
	s.mu.Lock()
	if doc == nil {
		doc = domain.NewTextDocument()
	}
	s.doc = doc
	s.caret = doc.PlainLength()
	s.mu.Unlock()
	s.notify()
}

// Marks returns the current marks of a type at absolute positions.
func (s *Surface) Marks(markType string) []domain.MarkRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.MarksOfType(markType)
}

// notify invokes registered callbacks outside the lock.
func (s *Surface) notify() {
	s.mu.RLock()
	callbacks := make([]func(), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}
