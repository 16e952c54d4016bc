// Package cache implements a byte-budgeted LRU cache of decoded tile
// payloads, tagged by generation for cheap bulk invalidation on zoom
// change. Payloads are opaque to the cache; cost is tracked in bytes, not
// entry count, to match the real constraint (GPU/JS heap pressure) rather
// than an arbitrary item cap.
package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// unboundedCount is the entry-count ceiling passed to the underlying
// simplelru.LRU. The cache never evicts by count — only by byte budget —
// so this is set high enough to never be hit in practice; simplelru
// requires a positive size.
const unboundedCount = 1 << 30

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Entries   int
	TotalBytes int64
	MaxBytes  int64
	Hits      int64
	Misses    int64
	Evictions int64
}

type entry[T any] struct {
	payload    T
	sizeBytes  int64
	generation int64
}

// Cache is a generic, byte-budgeted LRU cache keyed by tile key string.
type Cache[T any] struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[string, *entry[T]]
	maxBytes   int64
	totalBytes int64
	hits       int64
	misses     int64
	evictions  int64
}

// New creates a cache with a budget of maxSizeMB megabytes
// (maxBytes = maxSizeMB * 2^20).
func New[T any](maxSizeMB int) *Cache[T] {
	lru, err := simplelru.NewLRU[string, *entry[T]](unboundedCount, nil)
	if err != nil {
		// Only returns an error for a non-positive size, which unboundedCount
		// never is.
		panic(err)
	}
	return &Cache[T]{
		lru:      lru,
		maxBytes: int64(maxSizeMB) * (1 << 20),
	}
}

// Get returns the payload for key and marks it most-recently-used, or
// (zero, false) on a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		var zero T
		return zero, false
	}
	c.hits++
	return e.payload, true
}

// Has reports whether key is present, without affecting recency.
func (c *Cache[T]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(key)
}

// Set inserts or replaces the entry for key, then evicts least-recently-used
// entries (while more than one entry remains) until totalBytes <= maxBytes.
func (c *Cache[T]) Set(key string, payload T, sizeBytes int64, generation int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(key); ok {
		c.totalBytes -= old.sizeBytes
	}

	c.lru.Add(key, &entry[T]{payload: payload, sizeBytes: sizeBytes, generation: generation})
	c.totalBytes += sizeBytes

	for c.totalBytes > c.maxBytes && c.lru.Len() > 1 {
		_, victim, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.totalBytes -= victim.sizeBytes
		c.evictions++
	}
}

// Delete removes key, if present.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.lru.Peek(key); ok {
		c.totalBytes -= old.sizeBytes
		c.lru.Remove(key)
	}
}

// Clear empties the cache and resets byte accounting (not hit/miss/eviction
// counters, which are lifetime statistics).
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.totalBytes = 0
}

// InvalidateOldGenerations removes every entry whose generation is older
// than current.
func (c *Cache[T]) InvalidateOldGenerations(current int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if e.generation < current {
			c.lru.Remove(key)
			c.totalBytes -= e.sizeBytes
		}
	}
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:    c.lru.Len(),
		TotalBytes: c.totalBytes,
		MaxBytes:   c.maxBytes,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}
