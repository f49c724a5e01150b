package tree

import (
	"sync"

	"github.com/hackerc/linkhub/internal/model"
)

// Cache holds one materialized tree snapshot per user.
//
// The engine's functions are pure; this is the explicit owner of their
// results. The category service fills a user's slot after a successful
// query, routes every local edit through Apply, and drops the slot whenever
// a storage call fails — there is no rollback, only invalidate-and-refetch.
//
// Snapshots from two clients of the same user are only eventually
// consistent with each other; the one real uniqueness invariant (short ids)
// is enforced by the storage layer, not here.
type Cache struct {
	mu    sync.RWMutex
	trees map[string][]*model.TreeCategory
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{trees: make(map[string][]*model.TreeCategory)}
}

// Get returns the cached tree for a user. ok is false when the user has no
// snapshot (never loaded, or invalidated).
func (c *Cache) Get(userID string) (nodes []*model.TreeCategory, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nodes, ok = c.trees[userID]
	return nodes, ok
}

// Put replaces a user's snapshot.
func (c *Cache) Put(userID string, nodes []*model.TreeCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees[userID] = nodes
}

// Mutate applies one structural operation to a user's snapshot and stores
// the result. A user with no snapshot stays cold: the rest of the tree only
// exists in storage, so seeding anything here would hand out a partial
// snapshot. The next read rebuilds from storage instead.
func (c *Cache) Mutate(userID string, target *model.TreeCategory, op Op) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old, ok := c.trees[userID]
	if !ok {
		return
	}
	c.trees[userID] = Apply(old, target, op)
}

// Invalidate drops a user's snapshot so the next read refetches.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trees, userID)
}
