package symbolize

import (
	"sync"

	"stracetui/internal/model"
)

// entry is one memoized answer: a location, the unresolved sentinel
// (loc == nil, err == nil) or a failure.
type entry struct {
	loc *model.ResolvedLocation
	err error
}

func (e entry) unresolved() bool {
	return e.loc == nil && e.err == nil
}

// Cache maps (binary, address) to the symbolizer's answer. Entries are never
// invalidated: an address means the same thing for as long as the binary on
// disk is unchanged.
type Cache struct {
	mu      sync.RWMutex
	entries map[model.FrameKey]entry
	hits    int
	misses  int
}

func NewCache() *Cache {
	return &Cache{entries: make(map[model.FrameKey]entry)}
}

func (c *Cache) get(key model.FrameKey) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return e, ok
}

// peek looks key up without touching the statistics.
func (c *Cache) peek(key model.FrameKey) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) put(key model.FrameKey, e entry) {
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// putIfAbsent keeps an answer already stored by a concurrent lookup.
func (c *Cache) putIfAbsent(key model.FrameKey, e entry) {
	c.mu.Lock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = e
	}
	c.mu.Unlock()
}

// Len returns the number of cached keys, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports lookups served from memory and lookups that were not.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// forBinary returns the answers worth persisting for binary: locations and
// the unresolved sentinel. Failures are transient and stay in memory only.
func (c *Cache) forBinary(binary string) map[string]entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]entry)
	for k, e := range c.entries {
		if k.Binary == binary && e.err == nil {
			out[k.Address] = e
		}
	}
	return out
}
