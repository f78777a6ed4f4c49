package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

func fp(text string) domain.Fingerprint {
	return domain.FingerprintText(domain.CategoryGrammar, text)
}

func oneSuggestion(original string) []domain.Suggestion {
	return []domain.Suggestion{{
		Category:    domain.CategoryGrammar,
		Severity:    domain.SeverityWarning,
		Original:    original,
		Replacement: original + " fixed",
	}}
}

func TestCache_Get_Miss(t *testing.T) {
	c := NewCache(8, time.Minute)

	_, ok := c.Get(fp("a"), domain.CategoryGrammar)
	assert.False(t, ok)
}

func TestCache_GetOrFetch_CachesSuccess(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls atomic.Int32

	fetch := func(ctx context.Context) ([]domain.Suggestion, error) {
		calls.Add(1)
		return oneSuggestion("a"), nil
	}

	first, err := c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, fetch)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, fetch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_GetOrFetch_KeyedByCategory(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls atomic.Int32

	fetch := func(ctx context.Context) ([]domain.Suggestion, error) {
		calls.Add(1)
		return nil, nil
	}

	_, err := c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, fetch)
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), fp("a"), domain.CategoryTone, fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestCache_GetOrFetch_ErrorNotCached(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls atomic.Int32
	boom := errors.New("service down")

	fetch := func(ctx context.Context) ([]domain.Suggestion, error) {
		calls.Add(1)
		return nil, boom
	}

	_, err := c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, fetch)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	_, err = c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, fetch)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache(8, time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	_, err := c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, func(ctx context.Context) ([]domain.Suggestion, error) {
		return oneSuggestion("a"), nil
	})
	require.NoError(t, err)

	_, ok := c.Get(fp("a"), domain.CategoryGrammar)
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get(fp("a"), domain.CategoryGrammar)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, time.Minute)
	store := func(text string) {
		_, err := c.GetOrFetch(context.Background(), fp(text), domain.CategoryGrammar, func(ctx context.Context) ([]domain.Suggestion, error) {
			return oneSuggestion(text), nil
		})
		require.NoError(t, err)
	}

	store("a")
	store("b")

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get(fp("a"), domain.CategoryGrammar)
	require.True(t, ok)

	store("c")

	_, ok = c.Get(fp("a"), domain.CategoryGrammar)
	assert.True(t, ok)
	_, ok = c.Get(fp("b"), domain.CategoryGrammar)
	assert.False(t, ok)
	_, ok = c.Get(fp("c"), domain.CategoryGrammar)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_GetOrFetch_DeduplicatesInFlight(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) ([]domain.Suggestion, error) {
		calls.Add(1)
		<-release
		return oneSuggestion("a"), nil
	}

	const workers = 5
	results := make([][]domain.Suggestion, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, fetch)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	// Let the goroutines pile up on the pending fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Len(t, r, 1)
	}
}

func TestCache_GetOrFetch_JoinerHonoursContext(t *testing.T) {
	c := NewCache(8, time.Minute)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = c.GetOrFetch(context.Background(), fp("a"), domain.CategoryGrammar, func(ctx context.Context) ([]domain.Suggestion, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrFetch(ctx, fp("a"), domain.CategoryGrammar, func(ctx context.Context) ([]domain.Suggestion, error) {
		t.Fatal("joiner must not fetch")
		return nil, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}
