package cache

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LRUCache implements an LRU cache with TTL support.
type LRUCache struct {
	capacity   int
	defaultTTL time.Duration
	now        func() time.Time
	mu         sync.Mutex

	cache map[string]*entry
	order *list.List // front is most recently used

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	element   *list.Element
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewLRUCache creates a new LRU cache.
func NewLRUCache(capacity int, defaultTTL time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	return &LRUCache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		now:        time.Now,
		cache:      make(map[string]*entry),
		order:      list.New(),
	}
}

// Get retrieves a value from the cache.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.removeEntry(e)
		c.misses.Add(1)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	c.hits.Add(1)
	return e.value, true
}

// Set stores a value in the cache.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if e, ok := c.cache[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.cache) >= c.capacity {
		c.evictOldest()
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.element = c.order.PushFront(e)
	c.cache[key] = e
}

// Invalidate removes entries matching the pattern and returns how many.
// A trailing * matches any suffix.
func (c *LRUCache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		if e, ok := c.cache[pattern]; ok {
			c.removeEntry(e)
			return 1
		}
		return 0
	}

	count := 0
	for key, e := range c.cache {
		if strings.HasPrefix(key, prefix) {
			c.removeEntry(e)
			count++
		}
	}
	return count
}

// Size returns the number of entries in the cache.
func (c *LRUCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Stats returns usage counters.
func (c *LRUCache) Stats() Stats {
	return Stats{Size: c.Size(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Clear removes all entries from the cache.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*entry)
	c.order.Init()
}

// CleanupExpired removes all expired entries and returns how many.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.order.Back(); e != nil; {
		prev := e.Prev()
		if ent := e.Value.(*entry); now.After(ent.expiresAt) {
			c.removeEntry(ent)
			removed++
		}
		e = prev
	}
	return removed
}

// Must be called with lock held.
func (c *LRUCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.removeEntry(oldest.Value.(*entry))
}

// Must be called with lock held.
func (c *LRUCache) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.cache, e.key)
}
