package rotation

import "sync"

// Versioned is a Source that bumps its revision whenever its authored set changes.
// Implementations must be comparable (typically a pointer).
type Versioned interface {
	Source
	Revision() uint64
}

// Cache is a concurrency-safe read-through cache of Resolve results.
// Entries are keyed by source and angle and are discarded when the source
// revision moves on.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

type cacheKey struct {
	src   Versioned
	res   Resolution
	angle Angle
}

type cacheEntry struct {
	rev  uint64
	slot Slot
	err  error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Resolve returns the cached resolution for (src, res, angle), computing it on a miss.
func (c *Cache) Resolve(src Versioned, res Resolution, angle Angle) (Slot, error) {
	key := cacheKey{src: src, res: res, angle: angle}
	rev := src.Revision()

	c.mu.RLock()
	if e, ok := c.entries[key]; ok && e.rev == rev {
		c.mu.RUnlock()
		return e.slot, e.err
	}
	c.mu.RUnlock()

	slot, err := Resolve(src, res, angle)

	c.mu.Lock()
	c.entries[key] = cacheEntry{rev: rev, slot: slot, err: err}
	c.mu.Unlock()

	return slot, err
}

// Invalidate drops every entry for src.
func (c *Cache) Invalidate(src Versioned) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.src == src {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
