package services

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/logger"
)

// Fetcher loads suggestions on a cache miss, delegating to the external
// analysis service.
type Fetcher func(ctx context.Context) ([]domain.Suggestion, error)

// cacheKey identifies one memoised analysis call.
type cacheKey struct {
	fingerprint domain.Fingerprint
	category    domain.Category
}

// cacheEntry is a stored result with its creation time for TTL checks.
type cacheEntry struct {
	key         cacheKey
	suggestions []domain.Suggestion
	createdAt   time.Time
}

// pendingFetch collapses concurrent identical requests into one call.
type pendingFetch struct {
	done        chan struct{}
	suggestions []domain.Suggestion
	err         error
}

// Cache memoises analysis results by content fingerprint and category
// under an LRU + TTL policy, and deduplicates identical in-flight
// requests. Failed fetches are never stored, so a transient failure
// does not suppress retries.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    map[cacheKey]*list.Element
	lru        *list.List // front = most recently used
	pending    map[cacheKey]*pendingFetch

	// now is swappable for TTL tests.
	now func() time.Time
}

// NewCache creates a cache bounded to maxEntries with the given TTL.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[cacheKey]*list.Element),
		lru:        list.New(),
		pending:    make(map[cacheKey]*pendingFetch),
		now:        time.Now,
	}
}

// Get returns the cached suggestions for fingerprint+category, or false
// on a miss. Expired entries count as misses and are evicted.
func (c *Cache) Get(fingerprint domain.Fingerprint, category domain.Category) ([]domain.Suggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(cacheKey{fingerprint, category})
}

// GetOrFetch returns the cached result, joins an identical in-flight
// request, or invokes the fetcher. All concurrent callers with the same
// fingerprint+category share one underlying fetch and one outcome.
func (c *Cache) GetOrFetch(
	ctx context.Context,
	fingerprint domain.Fingerprint,
	category domain.Category,
	fetch Fetcher,
) ([]domain.Suggestion, error) {
	key := cacheKey{fingerprint, category}

	c.mu.Lock()
	if suggestions, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		logger.Debug("Cache: hit for %s fp=%08x", category, uint32(fingerprint))
		return suggestions, nil
	}
	if p, ok := c.pending[key]; ok {
		c.mu.Unlock()
		logger.Debug("Cache: joining in-flight request for %s fp=%08x", category, uint32(fingerprint))
		select {
		case <-p.done:
			return p.suggestions, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := &pendingFetch{done: make(chan struct{})}
	c.pending[key] = p
	c.mu.Unlock()

	suggestions, err := fetch(ctx)

	c.mu.Lock()
	delete(c.pending, key)
	if err == nil {
		c.storeLocked(key, suggestions)
	}
	c.mu.Unlock()

	p.suggestions = suggestions
	p.err = err
	close(p.done)
	return suggestions, err
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// getLocked looks up and touches an entry. Caller holds the lock.
func (c *Cache) getLocked(key cacheKey) ([]domain.Suggestion, bool) {
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.createdAt) > c.ttl {
		c.lru.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.lru.MoveToFront(el)
	return entry.suggestions, true
}

// storeLocked inserts an entry, evicting the least recently used one
// when full. Caller holds the lock.
func (c *Cache) storeLocked(key cacheKey, suggestions []domain.Suggestion) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).suggestions = suggestions
		el.Value.(*cacheEntry).createdAt = c.now()
		c.lru.MoveToFront(el)
		return
	}
	for c.maxEntries > 0 && c.lru.Len() >= c.maxEntries {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{
		key:         key,
		suggestions: suggestions,
		createdAt:   c.now(),
	})
}
