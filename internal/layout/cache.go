package layout

import (
	"sync"

	"abilower/internal/types"
)

type cacheEntry struct {
	layout TypeLayout
	err    *LayoutError
}

// cache is shared by every signature lowered against one engine. Two workers
// may compute the same entry; both arrive at the same result.
type cache struct {
	mu      sync.RWMutex
	entries map[types.TypeID]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[types.TypeID]cacheEntry, 64)}
}

func (c *cache) get(id types.TypeID) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

func (c *cache) put(id types.TypeID, l TypeLayout, err *LayoutError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = cacheEntry{layout: l, err: err}
}
