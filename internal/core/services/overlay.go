package services

import (
	"fmt"
	"sync"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
	"github.com/draftaid-io/draftaid/internal/logger"
)

// Overlay owns the set of active annotations, keyed by category, and
// reconciles them onto the editing surface as suggestion marks.
//
// The underlying mark model only supports whole-range clearing, not
// selective removal by category, so refreshing one category round-trips
// every other category through memory: snapshot, clear, re-apply.
type Overlay struct {
	mu          sync.Mutex
	surface     driven.EditorSurface
	annotations map[domain.Category][]domain.Annotation
}

// NewOverlay creates an overlay manager bound to a surface.
func NewOverlay(surface driven.EditorSurface) *Overlay {
	return &Overlay{
		surface:     surface,
		annotations: make(map[domain.Category][]domain.Annotation),
	}
}

// ReplaceCategory atomically removes all annotations of the category
// and installs the new set, leaving other categories' annotations at
// their original ranges.
//
// Previously-existing categories are re-applied before the fresh one:
// on a mark model that collapses duplicate instances over the same
// span, last write wins, so a fresh overlapping suggestion is not
// silently dropped.
func (o *Overlay) ReplaceCategory(category domain.Category, newAnnotations []domain.Annotation) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	doc := o.surface.Snapshot()
	if err := o.surface.ClearMarks(domain.MarkTypeSuggestion, 0, doc.Length()); err != nil {
		return fmt.Errorf("clear suggestion marks: %w", err)
	}

	// Re-apply the other categories at their original ranges, in a
	// stable order.
	for _, cat := range categoryOrder(o.annotations) {
		if cat == category {
			continue
		}
		o.applyAll(o.annotations[cat])
	}

	applied := o.applyAll(newAnnotations)
	o.annotations[category] = applied
	logger.Debug("Overlay: category %s now has %d annotations", category, len(applied))
	return nil
}

// RemoveAnnotationsInRange destroys every annotation overlapping
// [from, to), across all categories. Used when text underneath an
// annotation is edited or replaced, to avoid dangling stale marks.
func (o *Overlay) RemoveAnnotationsInRange(from, to int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.surface.ClearMarks(domain.MarkTypeSuggestion, from, to); err != nil {
		logger.Warn("Overlay: clear marks in [%d, %d): %v", from, to, err)
	}
	for cat, anns := range o.annotations {
		kept := anns[:0]
		for _, a := range anns {
			if a.Overlaps(from, to) {
				continue
			}
			kept = append(kept, a)
		}
		o.annotations[cat] = kept
	}
	// The clear is by overlap, so marks of surviving annotations were
	// untouched; nothing needs re-applying.
}

// Remove destroys a single annotation by ID without touching document
// text. Returns the removed annotation, or false if unknown.
func (o *Overlay) Remove(annotationID string) (domain.Annotation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for cat, anns := range o.annotations {
		for i, a := range anns {
			if a.ID != annotationID {
				continue
			}
			o.annotations[cat] = append(anns[:i:i], anns[i+1:]...)
			if err := o.surface.ClearMarks(domain.MarkTypeSuggestion, a.From, a.To); err != nil {
				logger.Warn("Overlay: clear mark for %s: %v", annotationID, err)
			}
			// Clearing is by range, so overlapping marks from other
			// categories were removed too; put them back.
			for _, other := range categoryOrder(o.annotations) {
				for _, oa := range o.annotations[other] {
					if oa.Overlaps(a.From, a.To) {
						o.apply(oa)
					}
				}
			}
			return a, true
		}
	}
	return domain.Annotation{}, false
}

// Find returns the annotation with the given ID.
func (o *Overlay) Find(annotationID string) (domain.Annotation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, anns := range o.annotations {
		for _, a := range anns {
			if a.ID == annotationID {
				return a, true
			}
		}
	}
	return domain.Annotation{}, false
}

// ShiftAfter moves the stored range of every annotation at or beyond
// pos by delta, keeping the overlay's bookkeeping in line with a text
// splice. The document's own marks shift with the text; this mirrors
// that shift for the overlay's copies.
func (o *Overlay) ShiftAfter(pos, delta int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for cat, anns := range o.annotations {
		for i := range anns {
			if anns[i].From >= pos {
				anns[i].From += delta
				anns[i].To += delta
			}
		}
		o.annotations[cat] = anns
	}
}

// ListActive returns a read-only snapshot of active annotations,
// optionally filtered by category, in document order per category.
func (o *Overlay) ListActive(category ...domain.Category) []domain.Annotation {
	o.mu.Lock()
	defer o.mu.Unlock()

	var cats []domain.Category
	if len(category) > 0 {
		cats = category
	} else {
		cats = categoryOrder(o.annotations)
	}
	var out []domain.Annotation
	for _, cat := range cats {
		out = append(out, o.annotations[cat]...)
	}
	return out
}

// applyAll applies marks for a set of annotations, skipping any single
// annotation whose mark application fails so one invalid range never
// aborts the whole pass.
func (o *Overlay) applyAll(anns []domain.Annotation) []domain.Annotation {
	applied := make([]domain.Annotation, 0, len(anns))
	for _, a := range anns {
		if !o.apply(a) {
			continue
		}
		applied = append(applied, a)
	}
	return applied
}

// apply installs one annotation's mark. Failures are logged and
// reported, never propagated.
func (o *Overlay) apply(a domain.Annotation) bool {
	if err := o.surface.ApplyMark(a.From, a.To, a.Mark()); err != nil {
		logger.Warn("Overlay: skipping annotation %s (%s) at [%d, %d): %v",
			a.ID, a.Category, a.From, a.To, err)
		return false
	}
	return true
}

// categoryOrder returns the map's categories in the stable analysis
// order, with any extra categories appended deterministically.
func categoryOrder(m map[domain.Category][]domain.Annotation) []domain.Category {
	order := make([]domain.Category, 0, len(m))
	for _, cat := range domain.AnalysisCategories() {
		if _, ok := m[cat]; ok {
			order = append(order, cat)
		}
	}
	for cat := range m {
		if !cat.IsTopLevel() {
			order = append(order, cat)
		}
	}
	return order
}
