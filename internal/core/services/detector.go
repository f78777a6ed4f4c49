package services

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/logger"
)

// FireFunc is invoked, outside the detector's lock, when a category's
// debounce elapses. It receives the freshly extracted analysis window
// and its fingerprint and is expected to run the analysis pass.
type FireFunc func(category domain.Category, window domain.Window, fingerprint domain.Fingerprint)

// SourceFunc supplies the current plain-text projection and caret
// offset on demand, so the window is always extracted from live state.
type SourceFunc func() (projection string, caret int)

// categoryState is one category's slot in the scheduling state machine.
type categoryState struct {
	phase           domain.AnalysisPhase
	timer           *time.Timer
	lastFingerprint domain.Fingerprint
	lastLength      int
	analyzedOnce    bool
}

// Detector observes document edits and decides, per category, when
// enough meaningful change has accumulated to justify re-analysis.
// Each category moves Idle → Scheduled → InFlight → Idle; bursts of
// keystrokes keep resetting the debounce timer, and a qualifying edit
// arriving while a call is in flight re-enters Scheduled without
// cancelling the call.
type Detector struct {
	mu       sync.Mutex
	settings domain.Settings
	source   SourceFunc
	fire     FireFunc
	states   map[domain.Category]*categoryState
	closed   bool
}

// NewDetector creates a detector. Settings are normalised.
func NewDetector(settings domain.Settings, source SourceFunc, fire FireFunc) *Detector {
	settings.Normalise()
	d := &Detector{
		settings: settings,
		source:   source,
		fire:     fire,
		states:   make(map[domain.Category]*categoryState),
	}
	for _, cat := range settings.Categories {
		d.states[cat] = &categoryState{phase: domain.PhaseIdle}
	}
	return d
}

// NoteEdit processes an edit notification for one category. It
// schedules a pass only when the content fingerprint changed, the
// length delta beats the keystroke-noise threshold, and the window
// around the caret has non-trivial content.
func (d *Detector) NoteEdit(category domain.Category) {
	projection, caret := d.source()
	window := extractWindow(projection, caret, d.settings)
	fingerprint := window.Fingerprint(category)

	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.states[category]
	if !ok || d.closed {
		return
	}

	if st.analyzedOnce && fingerprint == st.lastFingerprint {
		logger.Debug("Detector: %s unchanged (fp=%08x), not scheduling", category, uint32(fingerprint))
		return
	}
	delta := len(projection) - st.lastLength
	if delta < 0 {
		delta = -delta
	}
	if st.analyzedOnce && delta <= d.settings.MinLengthDelta {
		logger.Debug("Detector: %s length delta %d below threshold", category, delta)
		return
	}
	if len(window.Text) < d.settings.MinWindowChars || window.WordCount() < d.settings.MinWindowWords {
		logger.Debug("Detector: %s window too small (%d chars, %d words)",
			category, len(window.Text), window.WordCount())
		return
	}

	debounce := d.adaptiveDebounce(delta, len(projection), caret)
	d.scheduleLocked(category, st, debounce)
}

// ScheduleNow arms a category with the short post-accept debounce,
// bypassing the qualifying-edit gates.
func (d *Detector) ScheduleNow(category domain.Category) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.states[category]
	if !ok || d.closed {
		return
	}
	d.scheduleLocked(category, st, d.settings.ShortDebounce)
}

// OnResult records the outcome of an analysis pass. On success the
// analysed fingerprint and projection length become the new change
// baseline. The category returns to Idle unless a newer edit already
// re-entered Scheduled.
func (d *Detector) OnResult(category domain.Category, fingerprint domain.Fingerprint, projectionLen int, success bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.states[category]
	if !ok {
		return
	}
	if success {
		st.lastFingerprint = fingerprint
		st.lastLength = projectionLen
		st.analyzedOnce = true
	}
	if st.phase == domain.PhaseInFlight {
		st.phase = domain.PhaseIdle
	}
}

// Phase returns a category's current phase.
func (d *Detector) Phase(category domain.Category) domain.AnalysisPhase {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.states[category]; ok {
		return st.phase
	}
	return domain.PhaseIdle
}

// FlushDue fires every Scheduled category immediately, in the calling
// goroutine, bypassing the remaining debounce.
func (d *Detector) FlushDue() {
	d.mu.Lock()
	var due []domain.Category
	for _, cat := range d.settings.Categories {
		st := d.states[cat]
		if st.phase == domain.PhaseScheduled {
			if st.timer != nil {
				st.timer.Stop()
			}
			due = append(due, cat)
		}
	}
	d.mu.Unlock()

	for _, cat := range due {
		d.fireNow(cat)
	}
}

// Close stops all timers. Categories already handed to the fire
// callback are unaffected.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for _, st := range d.states {
		if st.timer != nil {
			st.timer.Stop()
		}
	}
}

// scheduleLocked arms (or re-arms) a category's debounce timer.
// Caller holds the lock.
func (d *Detector) scheduleLocked(category domain.Category, st *categoryState, debounce time.Duration) {
	if st.timer != nil {
		st.timer.Stop()
	}
	st.phase = domain.PhaseScheduled
	st.timer = time.AfterFunc(debounce, func() { d.fireNow(category) })
	logger.Debug("Detector: %s scheduled, debounce %s", category, debounce)
}

// fireNow extracts the analysis window from live state and hands it to
// the fire callback, moving Scheduled → InFlight. A stale timer whose
// category is no longer Scheduled is a no-op.
func (d *Detector) fireNow(category domain.Category) {
	d.mu.Lock()
	st, ok := d.states[category]
	if !ok || d.closed || st.phase != domain.PhaseScheduled {
		d.mu.Unlock()
		return
	}
	st.phase = domain.PhaseInFlight
	d.mu.Unlock()

	projection, caret := d.source()
	window := extractWindow(projection, caret, d.settings)
	d.fire(category, window, window.Fingerprint(category))
}

// adaptiveDebounce trades latency for fewer wasted calls: large edits
// (paste, bulk delete) and long documents stretch the debounce, while a
// small edit near the document edges shortens it.
func (d *Detector) adaptiveDebounce(delta, projectionLen, caret int) time.Duration {
	s := d.settings
	debounce := s.DebounceBase
	large := delta >= s.LargeEditChars
	if large {
		debounce *= 2
	}
	if projectionLen >= s.LongDocumentChars {
		debounce += s.DebounceBase / 2
	}
	nearEdge := caret <= s.EdgeZoneChars || projectionLen-caret <= s.EdgeZoneChars
	if !large && nearEdge {
		debounce = s.DebounceBase / 2
	}
	if debounce < s.DebounceMin {
		debounce = s.DebounceMin
	}
	if debounce > s.DebounceMax {
		debounce = s.DebounceMax
	}
	return debounce
}

// sentence and paragraph terminators recognised by the window
// extractor.
func isBoundary(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}

// extractWindow bounds the text sent for a single analysis call.
// Carets within the edge zone widen the window to the nearer document
// boundary; mid-document carets extend outward to the nearest sentence
// or paragraph boundary in each direction, capped at the maximum width,
// falling back to a fixed-width window when no boundary is nearby.
func extractWindow(projection string, caret int, s domain.Settings) domain.Window {
	n := len(projection)
	if caret < 0 {
		caret = 0
	}
	if caret > n {
		caret = n
	}

	if n <= s.MaxWindowChars {
		return domain.Window{Text: projection, Start: 0, End: n}
	}

	half := s.MaxWindowChars / 2
	var start, end int
	switch {
	case caret <= s.EdgeZoneChars:
		start, end = 0, min(n, s.MaxWindowChars)
	case n-caret <= s.EdgeZoneChars:
		start, end = max(0, n-s.MaxWindowChars), n
	default:
		start = boundaryBackward(projection, caret, half, s.FallbackWindowChars/2)
		end = boundaryForward(projection, caret, half, s.FallbackWindowChars/2)
	}

	// Never split a multi-byte rune.
	for start > 0 && start < n && !utf8.RuneStart(projection[start]) {
		start--
	}
	for end < n && !utf8.RuneStart(projection[end]) {
		end++
	}
	return domain.Window{Text: projection[start:end], Start: start, End: end}
}

// boundaryBackward finds the window start: just after the nearest
// sentence/paragraph terminator within maxBack of the caret, or a
// fixed fallbackBack width if none is found.
func boundaryBackward(projection string, caret, maxBack, fallbackBack int) int {
	floor := max(0, caret-maxBack)
	for i := caret - 1; i >= floor; i-- {
		if isBoundary(projection[i]) {
			start := i + 1
			for start < caret && projection[start] == ' ' {
				start++
			}
			return start
		}
	}
	return max(0, caret-fallbackBack)
}

// boundaryForward finds the window end: just past the nearest
// sentence/paragraph terminator within maxAhead of the caret, or a
// fixed fallbackAhead width if none is found.
func boundaryForward(projection string, caret, maxAhead, fallbackAhead int) int {
	ceil := min(len(projection), caret+maxAhead)
	for i := caret; i < ceil; i++ {
		if isBoundary(projection[i]) {
			return i + 1
		}
	}
	return min(len(projection), caret+fallbackAhead)
}
