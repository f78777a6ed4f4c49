package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagemem "github.com/draftaid-io/draftaid/internal/adapters/driven/storage/memory"
	surfacemem "github.com/draftaid-io/draftaid/internal/adapters/driven/surface/memory"
	"github.com/draftaid-io/draftaid/internal/core/domain"
)

// mockAnalysis returns canned suggestions per category and records calls.
type mockAnalysis struct {
	mu        sync.Mutex
	responses map[domain.Category][]domain.Suggestion
	err       error
	calls     int

	// onAnalyze, when set, runs before the response is returned. Used to
	// race edits against an in-flight call.
	onAnalyze func()
}

func (m *mockAnalysis) Analyze(_ context.Context, category domain.Category, _ string) ([]domain.Suggestion, error) {
	m.mu.Lock()
	m.calls++
	hook := m.onAnalyze
	err := m.err
	response := m.responses[category]
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (m *mockAnalysis) ModelName() string          { return "mock" }
func (m *mockAnalysis) Ping(context.Context) error { return nil }
func (m *mockAnalysis) Close() error               { return nil }

func (m *mockAnalysis) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// engineSettings uses an hour-long debounce so passes run only through
// Flush, never on a background timer.
func engineSettings(categories ...domain.Category) domain.Settings {
	return domain.Settings{
		Categories:     categories,
		DebounceBase:   time.Hour,
		DebounceMin:    time.Hour,
		DebounceMax:    time.Hour,
		ShortDebounce:  time.Hour,
		MinLengthDelta: 2,
		MinWindowChars: 10,
		MinWindowWords: 3,
		CacheSize:      8,
		CacheTTL:       time.Minute,
	}
}

const essayText = "The quick brown fox jump over the lazy dog. It was a sunny morning by the river."

func grammarFix() []domain.Suggestion {
	return []domain.Suggestion{{
		Category:    domain.CategoryGrammar,
		Severity:    domain.SeverityError,
		Original:    "jump over",
		Replacement: "jumps over",
		Explanation: "subject-verb agreement",
	}}
}

func TestEngine_EditPauseAnnotate(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryGrammar: grammarFix(),
	}}
	engine := NewEngine(surface, analysis, nil, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))

	anns := engine.Annotations()
	require.Len(t, anns, 1)
	assert.NotEmpty(t, anns[0].ID)
	assert.Equal(t, domain.CategoryGrammar, anns[0].Category)
	assert.Equal(t, "jump over", anns[0].Suggestion.Original)

	// "jump over" starts at plain offset 20; in a single-block document
	// the document position is one slot further.
	wantFrom := strings.Index(essayText, "jump over") + 1
	assert.Equal(t, wantFrom, anns[0].From)
	assert.Equal(t, wantFrom+len("jump over"), anns[0].To)

	marks := surface.Marks(domain.MarkTypeSuggestion)
	require.Len(t, marks, 1)
	assert.Equal(t, anns[0].ID, marks[0].AnnotationID)

	status := engine.CategoryStatus(domain.CategoryGrammar)
	assert.Empty(t, status.LastError)
	assert.False(t, status.LastAnalyzed.IsZero())
	assert.Equal(t, domain.PhaseIdle, status.Phase)
	assert.Equal(t, 1, analysis.callCount())
}

func TestEngine_AcceptAppliesReplacement(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	store := storagemem.NewDecisionStore()
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryGrammar: grammarFix(),
	}}
	engine := NewEngine(surface, analysis, store, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))
	anns := engine.Annotations()
	require.Len(t, anns, 1)

	err := engine.Accept(context.Background(), anns[0].ID)
	require.NoError(t, err)

	assert.Contains(t, surface.PlainText(), "jumps over")
	assert.NotContains(t, surface.PlainText(), "fox jump over")
	assert.Empty(t, engine.Annotations())
	assert.Empty(t, surface.Marks(domain.MarkTypeSuggestion))

	decisions, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, domain.DecisionAccepted, decisions[0].Action)
	assert.Equal(t, "jump over", decisions[0].Original)

	// The accept re-arms the category for a quick follow-up pass.
	assert.Equal(t, domain.PhaseScheduled, engine.CategoryStatus(domain.CategoryGrammar).Phase)
}

func TestEngine_AcceptCoachingOnlyLeavesTextAlone(t *testing.T) {
	text := "Everyone knows the quick brown fox is the fastest animal in the forest."
	surface := surfacemem.NewSurface(domain.NewTextDocument(text))
	store := storagemem.NewDecisionStore()
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryEvidence: {{
			Category:    domain.CategoryUnsupportedClaim,
			Severity:    domain.SeverityInfo,
			Original:    "Everyone knows",
			Explanation: "appeal to common knowledge without a source",
		}},
	}}
	engine := NewEngine(surface, analysis, store, engineSettings(domain.CategoryEvidence))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))
	anns := engine.Annotations()
	require.Len(t, anns, 1)
	assert.Equal(t, domain.CategoryUnsupportedClaim, anns[0].Suggestion.Category)
	assert.Equal(t, domain.CategoryEvidence, anns[0].Category)

	require.NoError(t, engine.Accept(context.Background(), anns[0].ID))

	assert.Equal(t, text, surface.PlainText())
	assert.Empty(t, engine.Annotations())

	decisions, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, domain.DecisionAccepted, decisions[0].Action)
}

func TestEngine_Accept_UnknownAnnotation(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	engine := NewEngine(surface, &mockAnalysis{}, nil, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	err := engine.Accept(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_AcceptShrinkingReplacementKeepsNeighbourMark(t *testing.T) {
	text := "The results were really really good and teh team was pleased."
	surface := surfacemem.NewSurface(domain.NewTextDocument(text))
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryTone: {{
			Category:    domain.CategoryTone,
			Severity:    domain.SeverityWarning,
			Original:    "really really good",
			Replacement: "strong",
			Explanation: "repetitive intensifier",
		}},
		domain.CategoryGrammar: {{
			Category:    domain.CategoryGrammar,
			Severity:    domain.SeverityError,
			Original:    "teh",
			Replacement: "the",
			Explanation: "typo",
		}},
	}}
	engine := NewEngine(surface, analysis, nil,
		engineSettings(domain.CategoryTone, domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))
	require.Len(t, engine.Annotations(), 2)
	require.Len(t, surface.Marks(domain.MarkTypeSuggestion), 2)

	toneAnns := engine.Annotations(domain.CategoryTone)
	require.Len(t, toneAnns, 1)
	require.NoError(t, engine.Accept(context.Background(), toneAnns[0].ID))

	plain := surface.PlainText()
	assert.Equal(t, "The results were strong and teh team was pleased.", plain)

	// The grammar annotation next door survives the shrinking splice:
	// its bookkeeping range and its rendered mark both shift left.
	grammarAnns := engine.Annotations(domain.CategoryGrammar)
	require.Len(t, grammarAnns, 1)
	wantFrom := strings.Index(plain, "teh") + 1
	assert.Equal(t, wantFrom, grammarAnns[0].From)
	assert.Equal(t, wantFrom+len("teh"), grammarAnns[0].To)

	marks := surface.Marks(domain.MarkTypeSuggestion)
	require.Len(t, marks, 1)
	assert.Equal(t, grammarAnns[0].ID, marks[0].AnnotationID)
	assert.Equal(t, wantFrom, marks[0].From)
	assert.Equal(t, wantFrom+len("teh"), marks[0].To)
}

func TestEngine_DismissSuppressesResurrection(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	store := storagemem.NewDecisionStore()
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryGrammar: grammarFix(),
	}}
	engine := NewEngine(surface, analysis, store, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))
	anns := engine.Annotations()
	require.Len(t, anns, 1)

	require.NoError(t, engine.Dismiss(context.Background(), anns[0].ID))
	assert.Empty(t, engine.Annotations())
	assert.Equal(t, essayText, surface.PlainText())

	dismissed, err := store.WasDismissed(context.Background(), domain.CategoryGrammar, "jump over")
	require.NoError(t, err)
	assert.True(t, dismissed)

	// A later edit triggers a fresh pass; the identical finding stays
	// suppressed even though the service reports it again.
	require.NoError(t, surface.EditPlain(len(essayText), len(essayText), " A heron waited nearby."))
	require.NoError(t, engine.Flush(context.Background()))

	assert.Empty(t, engine.Annotations())
	assert.Equal(t, 2, analysis.callCount())
}

func TestEngine_StaleResultDiscarded(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryGrammar: grammarFix(),
	}}
	// The document changes while the call is in flight.
	analysis.onAnalyze = func() {
		_ = surface.EditPlain(0, 0, "A completely different opening sentence was added. ")
	}
	engine := NewEngine(surface, analysis, nil, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))

	assert.Empty(t, engine.Annotations())
	assert.Empty(t, surface.Marks(domain.MarkTypeSuggestion))
	assert.Equal(t, 1, analysis.callCount())
}

func TestEngine_AnalysisFailureRecorded(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	analysis := &mockAnalysis{err: errors.New("rate limited")}
	engine := NewEngine(surface, analysis, nil, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))

	assert.Empty(t, engine.Annotations())
	status := engine.CategoryStatus(domain.CategoryGrammar)
	assert.Contains(t, status.LastError, "rate limited")
	assert.True(t, status.LastAnalyzed.IsZero())
}

func TestEngine_DuplicateFragmentsGetDisjointRanges(t *testing.T) {
	text := "It is very very good today, my friends."
	surface := surfacemem.NewSurface(domain.NewTextDocument(text))
	weak := domain.Suggestion{
		Category:    domain.CategoryTone,
		Severity:    domain.SeverityInfo,
		Original:    "very",
		Replacement: "remarkably",
	}
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryTone: {weak, weak},
	}}
	engine := NewEngine(surface, analysis, nil, engineSettings(domain.CategoryTone))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))

	anns := engine.Annotations()
	require.Len(t, anns, 2)
	assert.Equal(t, 7, anns[0].From)
	assert.Equal(t, 12, anns[1].From)
	assert.LessOrEqual(t, anns[0].To, anns[1].From)
}

func TestEngine_UnlocatableSuggestionSkipped(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryGrammar: {{
			Category:    domain.CategoryGrammar,
			Severity:    domain.SeverityError,
			Original:    "this text does not exist",
			Replacement: "still does not exist",
		}},
	}}
	engine := NewEngine(surface, analysis, nil, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))

	assert.Empty(t, engine.Annotations())
	assert.Empty(t, engine.CategoryStatus(domain.CategoryGrammar).LastError)
}

func TestEngine_IdenticalContentUsesCache(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryGrammar: grammarFix(),
	}}
	engine := NewEngine(surface, analysis, nil, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))
	require.Equal(t, 1, analysis.callCount())

	// Append and revert: the content is back to its analysed state, but
	// the length round-trip forces a reschedule through the edit gates.
	require.NoError(t, surface.EditPlain(len(essayText), len(essayText), " Extra sentence added here."))
	reverted := surface.PlainText()
	require.NoError(t, surface.EditPlain(len(essayText), len(reverted), ""))

	// A dismissal-free second pass over identical content is served from
	// the cache without another service call.
	require.NoError(t, engine.Flush(context.Background()))
	assert.Equal(t, 1, analysis.callCount())
}

func TestEngine_ClosedEngineRejectsOperations(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	engine := NewEngine(surface, &mockAnalysis{}, nil, engineSettings(domain.CategoryGrammar))
	require.NoError(t, engine.Close())

	assert.ErrorIs(t, engine.Flush(context.Background()), domain.ErrEngineClosed)
	assert.ErrorIs(t, engine.Accept(context.Background(), "x"), domain.ErrEngineClosed)
	assert.ErrorIs(t, engine.Dismiss(context.Background(), "x"), domain.ErrEngineClosed)

	// Close is idempotent.
	assert.NoError(t, engine.Close())
}

func TestEngine_PassAfterCloseIsNoOp(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	analysis := &mockAnalysis{responses: map[domain.Category][]domain.Suggestion{
		domain.CategoryGrammar: grammarFix(),
	}}
	engine := NewEngine(surface, analysis, nil, engineSettings(domain.CategoryGrammar))
	require.NoError(t, engine.Close())

	// A debounce timer firing during shutdown lands here; it must not
	// reach the analysis service.
	window := extractWindow(essayText, len(essayText), engine.settings)
	engine.runPass(domain.CategoryGrammar, window, window.Fingerprint(domain.CategoryGrammar))

	assert.Zero(t, analysis.callCount())
	assert.Empty(t, engine.Annotations())
}

func TestEngine_NoAnalysisServiceIsInert(t *testing.T) {
	surface := surfacemem.NewSurface(domain.NewTextDocument(essayText))
	engine := NewEngine(surface, nil, nil, engineSettings(domain.CategoryGrammar))
	defer engine.Close()

	engine.DocumentChanged()
	require.NoError(t, engine.Flush(context.Background()))

	assert.Empty(t, engine.Annotations())
	assert.Equal(t, domain.PhaseIdle, engine.CategoryStatus(domain.CategoryGrammar).Phase)
}
