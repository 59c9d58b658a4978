package daemon

import (
	"sort"
	"sync"

	"orchestra/internal/registry"
)

// RegistryCache is the daemon's shared view of the registry.
// Readers clone names under a short read
// lock and assemble replies off-lock; refreshes reload off-lock and swap
// the map in under a brief write lock. No task holds two locks.
type RegistryCache struct {
	mu   sync.RWMutex
	home string
	data map[string]*registry.Codebase
}

// NewRegistryCache builds an empty cache for the given Orchestra home.
func NewRegistryCache(home string) *RegistryCache {
	return &RegistryCache{home: home, data: make(map[string]*registry.Codebase)}
}

// Refresh reloads the registry from disk (expected to run on a blocking
// worker) and swaps it in under the write lock only.
func (c *RegistryCache) Refresh() error {
	reg, err := registry.Load(c.home)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data = reg.Codebases
	c.mu.Unlock()
	return nil
}

// Names returns a sorted snapshot of codebase names.
func (c *RegistryCache) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.data))
	for n := range c.data {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Count returns the number of cached codebases.
func (c *RegistryCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
