// Package cache provides the in-process TTL LRU used by the cached content
// service and the orchestrator's decision cache.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is the common interface for in-process caches. A zero ttl on Set
// means the cache-wide default.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Keys() []string
	Purge()
}

type record struct {
	key      string
	value    any
	deadline time.Time // zero means no expiry
}

type lruCache struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	index      map[string]*list.Element // value is *record
	recency    *list.List               // front is most recently used
}

// NewLRU creates an LRU cache with the given capacity and default TTL.
func NewLRU(capacity int, ttl time.Duration) Cache {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &lruCache{
		capacity:   capacity,
		defaultTTL: ttl,
		index:      make(map[string]*list.Element, capacity),
		recency:    list.New(),
	}
}

func (c *lruCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return nil, false
	}
	rec := elem.Value.(*record)
	if rec.expired(time.Now()) {
		c.drop(elem)
		return nil, false
	}
	c.recency.MoveToFront(elem)
	return rec.value, true
}

func (c *lruCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		rec := elem.Value.(*record)
		rec.value = value
		rec.deadline = deadline
		c.recency.MoveToFront(elem)
		return
	}
	for len(c.index) >= c.capacity {
		oldest := c.recency.Back()
		if oldest == nil {
			break
		}
		c.drop(oldest)
	}
	c.index[key] = c.recency.PushFront(&record{key: key, value: value, deadline: deadline})
}

// Keys returns a snapshot of live keys in recency order, most recent first.
// Expired records are skipped but left in place; removal stays lazy on Get.
func (c *lruCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, len(c.index))
	for elem := c.recency.Front(); elem != nil; elem = elem.Next() {
		rec := elem.Value.(*record)
		if !rec.expired(now) {
			keys = append(keys, rec.key)
		}
	}
	return keys
}

func (c *lruCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = make(map[string]*list.Element, c.capacity)
	c.recency.Init()
}

func (c *lruCache) drop(elem *list.Element) {
	rec := c.recency.Remove(elem).(*record)
	delete(c.index, rec.key)
}

func (r *record) expired(now time.Time) bool {
	return !r.deadline.IsZero() && now.After(r.deadline)
}
