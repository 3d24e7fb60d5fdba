// Package cache provides the process-wide key-value cache used for
// read-mostly lookups such as the resolved default store and the
// per-store checkout geography lists.
package cache

import (
	"sync"
	"time"
)

// DefaultStoreKey names the cache entry holding the resolved default store.
const DefaultStoreKey = "default_store"

// Cache is a TTL'd in-process key-value store with last-writer-wins
// semantics. Readers may observe a stale value until the entry expires
// or is explicitly deleted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	value     any
	expiresAt time.Time
}

// DefaultTTL bounds staleness for entries cached without explicit invalidation.
const DefaultTTL = 5 * time.Minute

// New builds a cache with the given default TTL. A non-positive ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: map[string]entry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

// Fetch returns the cached value for key, invoking fill on a miss and
// caching its result. A fill error is returned without caching anything.
func (c *Cache) Fetch(key string, fill func() (any, error)) (any, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := fill()
	if err != nil {
		return nil, err
	}
	c.Set(key, value)
	return value, nil
}

// Get returns the live value for key, if any.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the cache's default TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Delete removes the entry for key. Missing keys are a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
