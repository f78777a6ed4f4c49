package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
	"github.com/draftaid-io/draftaid/internal/core/ports/driving"
	"github.com/draftaid-io/draftaid/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.SuggestionEngine = (*Engine)(nil)

// categoryRecord holds the per-category bookkeeping the UI reads.
type categoryRecord struct {
	lastError    string
	lastAnalyzed time.Time
}

// Engine is the suggestion lifecycle controller. It receives edit
// notifications, drives the scheduler, invokes the external analysis
// service through the request cache, feeds results through the locator
// and mapper into the overlay, and exposes accept/dismiss.
//
// One Engine serves one open document. All annotation state and every
// document mutation the engine performs serialise behind a single
// mutex; analysis calls run outside it and re-enter on arrival.
type Engine struct {
	mu        sync.Mutex
	surface   driven.EditorSurface
	analysis  driven.AnalysisService // optional; nil disables scheduling
	decisions driven.DecisionStore   // optional
	settings  domain.Settings

	locator  *Locator
	mapper   *Mapper
	overlay  *Overlay
	detector *Detector
	cache    *Cache

	records map[domain.Category]*categoryRecord

	// applying suppresses change notifications caused by the engine's
	// own mutations (accept, overlay re-application), so a pass never
	// re-triggers itself.
	applying atomic.Bool
	closed   atomic.Bool
	wg       sync.WaitGroup
}

// NewEngine creates an engine bound to a surface. The analysis service
// and decision store are optional; without an analysis service the
// engine tracks nothing and schedules nothing. The engine registers
// itself for change notifications on the surface.
func NewEngine(
	surface driven.EditorSurface,
	analysis driven.AnalysisService,
	decisions driven.DecisionStore,
	settings domain.Settings,
) *Engine {
	settings.Normalise()
	e := &Engine{
		surface:   surface,
		analysis:  analysis,
		decisions: decisions,
		settings:  settings,
		locator:   NewLocator(),
		mapper:    NewMapper(),
		overlay:   NewOverlay(surface),
		cache:     NewCache(settings.CacheSize, settings.CacheTTL),
		records:   make(map[domain.Category]*categoryRecord),
	}
	for _, cat := range settings.Categories {
		e.records[cat] = &categoryRecord{}
	}
	e.detector = NewDetector(settings, e.readSource, e.runPass)
	surface.OnChange(e.DocumentChanged)
	return e
}

// DocumentChanged forwards an edit notification to change detection.
// Pure orchestration: no document mutation happens here. Notifications
// raised by the engine's own mutations are ignored.
func (e *Engine) DocumentChanged() {
	if e.closed.Load() {
		return
	}
	if e.applying.Load() {
		logger.Debug("Engine: ignoring self-inflicted change notification")
		return
	}
	if e.analysis == nil {
		return
	}
	for _, cat := range e.settings.Categories {
		e.detector.NoteEdit(cat)
	}
}

// Flush runs every scheduled category immediately and waits for the
// results to reconcile.
func (e *Engine) Flush(ctx context.Context) error {
	if e.closed.Load() {
		return domain.ErrEngineClosed
	}
	e.detector.FlushDue()
	return ctx.Err()
}

// Accept applies a suggestion. For categories with replacement text the
// annotation's range is re-validated against the live projection (the
// document may have moved since the annotation was created), the range
// is replaced, stale marks over the affected span are destroyed, and a
// fresh pass is scheduled with a short debounce. For coaching-only
// categories the document is untouched and the annotation is dismissed.
func (e *Engine) Accept(ctx context.Context, annotationID string) error {
	if e.closed.Load() {
		return domain.ErrEngineClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ann, ok := e.overlay.Find(annotationID)
	if !ok {
		return fmt.Errorf("accept %s: %w", annotationID, domain.ErrNotFound)
	}
	s := ann.Suggestion

	if !s.HasReplacement() {
		e.withApplying(func() { e.overlay.Remove(annotationID) })
		e.recordDecision(ctx, domain.DecisionAccepted, s)
		return nil
	}

	// Re-validate: the text may have moved since the annotation was
	// created.
	doc := e.surface.Snapshot()
	spans := e.locator.FindOccurrences(doc.PlainText(), s.Original)
	from, to, ok := e.closestSpan(doc, spans, ann.From)
	if !ok {
		logger.Info("Engine: accept %s: text no longer locatable, dropping annotation", annotationID)
		e.withApplying(func() { e.overlay.Remove(annotationID) })
		return nil
	}

	// The cleanup and the replacement are one atomic step under the
	// engine lock. The affected span is cleared before the splice:
	// the splice shifts downstream marks, and clearing the old range
	// afterwards would hit a surviving neighbour's shifted mark.
	var applyErr error
	e.withApplying(func() {
		e.overlay.RemoveAnnotationsInRange(from, to)
		if applyErr = e.surface.ReplaceRange(from, to, s.Replacement); applyErr != nil {
			return
		}
		e.overlay.ShiftAfter(to, len(s.Replacement)-(to-from))
	})
	if applyErr != nil {
		return fmt.Errorf("accept %s: %w", annotationID, applyErr)
	}

	e.recordDecision(ctx, domain.DecisionAccepted, s)

	// The edit may have introduced or resolved further issues.
	e.detector.ScheduleNow(ann.Category.Parent())
	return nil
}

// Dismiss destroys a single annotation without touching document text.
// The fragment is remembered so an unrelated fresh pass does not
// instantly resurrect an identical suggestion (best effort only).
func (e *Engine) Dismiss(ctx context.Context, annotationID string) error {
	if e.closed.Load() {
		return domain.ErrEngineClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ann, ok := e.overlay.Find(annotationID)
	if !ok {
		return fmt.Errorf("dismiss %s: %w", annotationID, domain.ErrNotFound)
	}
	e.withApplying(func() { e.overlay.Remove(annotationID) })
	e.recordDecision(ctx, domain.DecisionDismissed, ann.Suggestion)
	return nil
}

// Annotations returns a read-only snapshot of active annotations.
func (e *Engine) Annotations(category ...domain.Category) []domain.Annotation {
	return e.overlay.ListActive(category...)
}

// CategoryStatus returns the scheduling state for a category.
func (e *Engine) CategoryStatus(category domain.Category) domain.CategoryStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	status := domain.CategoryStatus{Phase: e.detector.Phase(category)}
	if rec, ok := e.records[category]; ok {
		status.LastError = rec.lastError
		status.LastAnalyzed = rec.lastAnalyzed
	}
	return status
}

// Close stops timers and waits for in-flight passes to finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	alreadyClosed := e.closed.Swap(true)
	e.mu.Unlock()
	if alreadyClosed {
		return nil
	}
	e.detector.Close()
	e.wg.Wait()
	return nil
}

// readSource supplies the detector with live projection and caret.
func (e *Engine) readSource() (string, int) {
	return e.surface.PlainText(), e.surface.CaretOffset()
}

// runPass is the detector's fire callback: it resolves the window
// through the request cache and reconciles the result. Runs on the
// debounce timer's goroutine (or the Flush caller's).
func (e *Engine) runPass(category domain.Category, window domain.Window, fingerprint domain.Fingerprint) {
	// The closed check and the waitgroup registration are one step
	// under the lock, so a timer firing during Close cannot slip past
	// its Wait.
	e.mu.Lock()
	if e.closed.Load() {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	logger.Section(fmt.Sprintf("Analysis pass: %s", category))
	logger.Debug("Window [%d, %d), %d chars, fp=%08x",
		window.Start, window.End, len(window.Text), uint32(fingerprint))

	ctx := context.Background()
	suggestions, err := e.cache.GetOrFetch(ctx, fingerprint, category, func(ctx context.Context) ([]domain.Suggestion, error) {
		return e.analysis.Analyze(ctx, category, window.Text)
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	projection := e.surface.PlainText()

	if err != nil {
		logger.Warn("Engine: %s analysis failed: %v", category, err)
		if rec, ok := e.records[category]; ok {
			rec.lastError = err.Error()
		}
		// Existing annotations of the category stay; a future edit
		// retries.
		e.detector.OnResult(category, fingerprint, len(projection), false)
		return
	}

	// Results may arrive out of order relative to newer edits: discard
	// when the analysed window no longer matches the live projection.
	current := extractWindow(projection, e.surface.CaretOffset(), e.settings)
	if current.Fingerprint(category) != fingerprint {
		logger.Debug("Engine: %s result is stale (fp %08x != %08x), discarding",
			category, uint32(fingerprint), uint32(current.Fingerprint(category)))
		e.detector.OnResult(category, fingerprint, len(projection), false)
		return
	}

	annotations := e.reconcile(ctx, category, projection, suggestions)
	e.withApplying(func() {
		if err := e.overlay.ReplaceCategory(category, annotations); err != nil {
			logger.Warn("Engine: %s overlay refresh failed: %v", category, err)
		}
	})

	if rec, ok := e.records[category]; ok {
		rec.lastError = ""
		rec.lastAnalyzed = time.Now()
	}
	e.detector.OnResult(category, fingerprint, len(projection), true)
	logger.Info("Engine: %s pass produced %d annotations from %d suggestions",
		category, len(annotations), len(suggestions))
}

// reconcile turns raw suggestions into located annotations: stamp the
// category, filter dismissed fragments, locate each original in the
// projection, and map the chosen span to document positions. Within a
// category annotations stay range-disjoint; occupied spans make the
// locator's next occurrence the candidate.
func (e *Engine) reconcile(
	ctx context.Context,
	category domain.Category,
	projection string,
	suggestions []domain.Suggestion,
) []domain.Annotation {
	doc := e.surface.Snapshot()
	annotations := make([]domain.Annotation, 0, len(suggestions))
	var taken []domain.Span

	for _, s := range suggestions {
		// The engine stamps the category; only coaching sub-categories
		// of the requested category are honoured from the response.
		if s.Category.Parent() != category {
			s.Category = category
		}
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if e.wasDismissed(ctx, s) {
			logger.Debug("Engine: suppressing dismissed fragment %q", s.Original)
			continue
		}

		span, ok := firstFreeSpan(e.locator.FindOccurrences(projection, s.Original), taken)
		if !ok {
			logger.Debug("Engine: fragment %q not locatable, skipping", s.Original)
			continue
		}
		from, to, err := e.mapper.SpanToDocument(doc, span)
		if err != nil {
			logger.Warn("Engine: mapping %q: %v", s.Original, err)
			continue
		}
		taken = append(taken, span)
		annotations = append(annotations, domain.Annotation{
			ID:         uuid.New().String(),
			Suggestion: s,
			Category:   category,
			From:       from,
			To:         to,
		})
	}
	return annotations
}

// closestSpan maps candidate spans to document ranges and picks the one
// nearest the annotation's recorded position.
func (e *Engine) closestSpan(doc *domain.Document, spans []domain.Span, near int) (int, int, bool) {
	bestFrom, bestTo, bestDist := 0, 0, -1
	for _, span := range spans {
		from, to, err := e.mapper.SpanToDocument(doc, span)
		if err != nil {
			continue
		}
		dist := from - near
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestFrom, bestTo, bestDist = from, to, dist
		}
	}
	return bestFrom, bestTo, bestDist >= 0
}

// wasDismissed consults the decision store; store errors fail open.
func (e *Engine) wasDismissed(ctx context.Context, s domain.Suggestion) bool {
	if e.decisions == nil {
		return false
	}
	dismissed, err := e.decisions.WasDismissed(ctx, s.Category, s.Original)
	if err != nil {
		logger.Warn("Engine: dismissal lookup failed: %v", err)
		return false
	}
	return dismissed
}

// recordDecision writes the audit record; failures are logged, never
// surfaced to the UI.
func (e *Engine) recordDecision(ctx context.Context, action domain.DecisionAction, s domain.Suggestion) {
	if e.decisions == nil {
		return
	}
	if err := e.decisions.Record(ctx, domain.NewDecision(action, s)); err != nil {
		logger.Warn("Engine: recording %s decision: %v", action, err)
	}
}

// withApplying runs fn with the re-entrancy guard held.
func (e *Engine) withApplying(fn func()) {
	e.applying.Store(true)
	defer e.applying.Store(false)
	fn()
}

// firstFreeSpan returns the first span that does not overlap any taken
// span.
func firstFreeSpan(spans, taken []domain.Span) (domain.Span, bool) {
	for _, span := range spans {
		conflict := false
		for _, t := range taken {
			if span.Start < t.End && t.Start < span.End {
				conflict = true
				break
			}
		}
		if !conflict {
			return span, true
		}
	}
	return domain.Span{}, false
}
