package steam

import (
	"sync"
	"time"
)

// ttlCache is a minimal in-process cache with a fixed time-to-live. It backs
// the accessor's freshness policy for the app list, per-app details, and the
// sale listing; nothing outside this package caches catalog data.
type ttlCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

func newTTLCache[V any](ttl time.Duration, now func() time.Time) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry[V]),
	}
}

// get returns the cached value for key when it is still fresh. Stale entries
// are evicted on access.
func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, storedAt: c.now()}
}
