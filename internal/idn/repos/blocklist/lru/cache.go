package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-idn/internal/idn/repos/blocklist"
)

var newLRU = func(size int, onEvict func(string, bool)) (*lru.Cache[string, bool], error) {
	return lru.NewWithEvict(size, onEvict)
}

// verdictCache is an LRU-backed implementation of blocklist.VerdictCache.
// It tracks basic metrics: hits, misses, and evictions.
type verdictCache struct {
	lru       *lru.Cache[string, bool]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache is a no-op VerdictCache used when size <= 0.
type disabledCache struct {
	misses atomic.Uint64
}

// New creates a new VerdictCache with the given capacity. If size <= 0, a
// disabled cache is returned that always misses.
func New(size int) (blocklist.VerdictCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	vc := &verdictCache{capacity: size}
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := newLRU(size, func(string, bool) { vc.evictions.Add(1) })
	if err != nil {
		return nil, err
	}
	vc.lru = cache
	return vc, nil
}

// Key builds the cache key for a label evaluated under tld.
func Key(label, tld string) string { return label + "|" + tld }

// Get looks up a verdict. When found, increments hits; otherwise increments misses.
func (c *verdictCache) Get(key string) (bool, bool) {
	if safe, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return safe, true
	}
	c.misses.Add(1)
	return false, false
}

// Put stores a verdict.
func (c *verdictCache) Put(key string, safe bool) {
	c.lru.Add(key, safe)
}

// Len returns the number of entries in the cache.
func (c *verdictCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Evictions are counted via the eviction callback.
func (c *verdictCache) Purge() { c.lru.Purge() }

func (c *verdictCache) Stats() blocklist.CacheStats {
	return blocklist.CacheStats{
		Capacity:  c.capacity,
		Size:      c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// disabledCache implementation

func (d *disabledCache) Get(string) (bool, bool) {
	d.misses.Add(1)
	return false, false
}

func (d *disabledCache) Put(string, bool) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() blocklist.CacheStats {
	return blocklist.CacheStats{Misses: d.misses.Load()}
}

var _ blocklist.VerdictCache = (*verdictCache)(nil)
var _ blocklist.VerdictCache = (*disabledCache)(nil)
