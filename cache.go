package blogfront

import (
	"sync"
	"time"
)

// PageCache is an in-memory cache of rendered pages with a TTL. The dataset
// never changes while the process runs, so entries only expire with time.
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]cachedPage
	ttl     time.Duration
	now     func() time.Time
}

type cachedPage struct {
	body    []byte
	fetched time.Time
}

// NewPageCache creates a PageCache. A non-positive ttl disables caching.
func NewPageCache(ttl time.Duration, now func() time.Time) *PageCache {
	if now == nil {
		now = time.Now
	}
	return &PageCache{
		entries: make(map[string]cachedPage),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached body for key if it is still fresh.
func (c *PageCache) Get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	p, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(p.fetched) >= c.ttl {
		return nil, false
	}
	return p.body, true
}

// Put stores body under key and drops expired entries.
func (c *PageCache) Put(key string, body []byte) {
	if c.ttl <= 0 {
		return
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.entries {
		if now.Sub(p.fetched) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cachedPage{body: body, fetched: now}
}

// Invalidate clears the cache so the next read renders afresh.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cachedPage)
	c.mu.Unlock()
}

// Len returns the number of entries, fresh or not.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
