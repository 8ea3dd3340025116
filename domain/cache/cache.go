package cache

import (
	"sync"
	"time"
)

// Cache is a concurrent-safe key value store with per item expiration.
// Expired items are evicted lazily on read and by CleanUp.
//
// Items live in a sync.Map, so reading a key never waits on a write to another key.
type Cache struct {
	data  sync.Map // string -> *cacheItem
	nowFn func() time.Time
}

type cacheItem struct {
	value      interface{}
	expiration time.Time
}

func (i *cacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// NoExpiration keeps an item until it is deleted.
const NoExpiration time.Duration = 0

// New creates a new cache.
func New() *Cache {
	return &Cache{nowFn: time.Now}
}

// WithNowFn overrides the clock. It must be called before the cache is shared.
func (c *Cache) WithNowFn(nowFn func() time.Time) *Cache {
	c.nowFn = nowFn
	return c
}

// Set adds an item to the cache with a specified key, value and time to live.
// A zero ttl means the item never expires.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	item := &cacheItem{value: value}
	if ttl > 0 {
		item.expiration = c.nowFn().Add(ttl)
	}

	c.data.Store(key, item)
}

// Get retrieves the value associated with a key from the cache. Returns false if the key does not exist or expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	stored, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}

	item := stored.(*cacheItem)
	if item.expired(c.nowFn()) {
		// Only this item is removed; a concurrent Set of the key wins.
		c.data.CompareAndDelete(key, item)
		return nil, false
	}

	return item.value, true
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.data.Delete(key)
}

// CleanUp removes all expired items.
func (c *Cache) CleanUp() {
	now := c.nowFn()
	c.data.Range(func(key, stored any) bool {
		if item := stored.(*cacheItem); item.expired(now) {
			c.data.CompareAndDelete(key, item)
		}
		return true
	})
}

// Len returns the number of stored items, including expired ones not yet evicted.
func (c *Cache) Len() int {
	n := 0
	c.data.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
