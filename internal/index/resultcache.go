package index

import (
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	matches    []Match
	insertedAt time.Time
}

// ResultCache is a bounded, time-boxed cache of search results keyed by
// case-folded query text. It shields the embedding provider from repeated
// identical queries. Eviction is TTL on read and FIFO on insert; entries
// live only for the process lifetime.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	order    []string
	ttl      time.Duration
	capacity int
	hits     uint64
	misses   uint64

	now func() time.Time
}

func NewResultCache(ttl time.Duration, capacity int) *ResultCache {
	return &ResultCache{
		entries:  make(map[string]cacheEntry, capacity),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// NormalizeQuery folds the cache key so lookups are case-insensitive.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached matches for a normalized query. An entry older
// than the TTL is evicted and counted as a miss.
func (c *ResultCache) Get(query string) ([]Match, bool) {
	key := NormalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.remove(key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.matches, true
}

// Put stores matches for a normalized query, evicting the oldest entry
// by insertion order when capacity is exceeded.
func (c *ResultCache) Put(query string, matches []Match) {
	key := NormalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.remove(key)
	}
	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		c.remove(c.order[0])
	}

	c.entries[key] = cacheEntry{matches: matches, insertedAt: c.now()}
	c.order = append(c.order, key)
}

// Flush drops every entry. Called after a generation swap so stale
// results do not outlive the index they were computed against.
func (c *ResultCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry, c.capacity)
	c.order = c.order[:0]
}

// Stats returns the hit and miss counters.
func (c *ResultCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
