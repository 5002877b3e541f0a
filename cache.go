package graphql

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a fixed-capacity LRU store whose keys are compared structurally
// and whose values are compared by identity. It is safe for concurrent use.
type Cache[K any, V comparable] struct {
	mu    sync.Mutex
	store *lru.Cache[string, V]
}

// NewCache creates a cache holding at most capacity entries.
func NewCache[K any, V comparable](capacity int) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("graphql: cache capacity must be positive, got %d", capacity)
	}
	store, err := lru.New[string, V](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{store: store}, nil
}

// Get returns the value stored under a key equal to k and marks it most
// recently used.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(canonicalKey(k))
}

// Set stores v under k. An existing equal key is replaced in place; a new key
// on a full cache evicts the least recently used entry, and Set reports it.
func (c *Cache[K, V]) Set(k K, v V) (evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Add(canonicalKey(k), v)
}

// DropKey removes the entry whose key equals k, if any.
func (c *Cache[K, V]) DropKey(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Remove(canonicalKey(k))
}

// DropValue removes every entry holding v and returns how many were removed.
func (c *Cache[K, V]) DropValue(v V) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.store.Keys() {
		if stored, ok := c.store.Peek(key); ok && stored == v {
			c.store.Remove(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Purge()
}
