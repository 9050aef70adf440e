package services

import (
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gin-gonic/gin"
)

// HomeCacheKey is the single key for the home listing. It is deliberately
// not per-user and not per-query-string: within the window every viewer gets
// the same stored rendering.
const HomeCacheKey = "home:index"

// HomeCacheTTL is the home page cache window.
const HomeCacheTTL = 20 * time.Second

type cacheEntry struct {
	data      gin.H
	expiresAt time.Time
}

// PageCache is a time-boxed cache of fully assembled render data. The clock
// is injected so tests can advance time instead of sleeping.
type PageCache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
	now     func() time.Time
}

func NewPageCache(ttl time.Duration, now func() time.Time) *PageCache {
	if now == nil {
		now = time.Now
	}

	l, err := lru.New[string, cacheEntry](64)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}

	return &PageCache{entries: l, ttl: ttl, now: now}
}

// Get returns the stored rendering, or false once the window has passed.
func (c *PageCache) Get(key string) (gin.H, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}

	return entry.data, true
}

// Set stores a rendering for one window starting now. Concurrent misses may
// both store; last writer wins, and either result is acceptable. The cache
// keeps a private copy: callers stay free to mutate their map after Set while
// other goroutines iterate the stored one.
func (c *PageCache) Set(key string, data gin.H) {
	stored := make(gin.H, len(data))
	for k, v := range data {
		stored[k] = v
	}

	c.entries.Add(key, cacheEntry{
		data:      stored,
		expiresAt: c.now().Add(c.ttl),
	})
}

// Flush drops the entry immediately, regardless of window state.
func (c *PageCache) Flush(key string) {
	c.entries.Remove(key)
}
