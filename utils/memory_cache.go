package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

func (i cacheItem[V]) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// MemoryCache provides in-memory caching with optional expiration.
// Clear swaps the whole map, so readers never observe a partially
// cleared cache.
type MemoryCache[V any] struct {
	items  map[string]cacheItem[V]
	mu     sync.RWMutex
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a cache; a zero ttl keeps items until cleared
func NewMemoryCache[V any](ttl time.Duration) *MemoryCache[V] {
	return &MemoryCache[V]{
		items: make(map[string]cacheItem[V]),
		ttl:   ttl,
	}
}

// Set stores a value in cache
func (c *MemoryCache[V]) Set(key string, value V) {
	item := cacheItem[V]{value: value}
	if c.ttl > 0 {
		item.expiration = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
}

// Get retrieves a value from cache
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || item.expired(time.Now()) {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return item.value, true
}

// Delete removes an item from cache
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes all items from cache
func (c *MemoryCache[V]) Clear() {
	fresh := make(map[string]cacheItem[V])
	c.mu.Lock()
	c.items = fresh
	c.mu.Unlock()
}

// Cleanup removes expired items
func (c *MemoryCache[V]) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
		}
	}
}

// RunJanitor calls Cleanup every interval until ctx is done
func (c *MemoryCache[V]) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// Size returns the number of items in cache
func (c *MemoryCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Keys returns all keys in cache
func (c *MemoryCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}

	return keys
}

// Stats returns hit and miss counters
func (c *MemoryCache[V]) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.Size(),
	}
}
