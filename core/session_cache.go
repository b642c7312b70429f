package core

import (
	"sync"
	"time"
)

// InMemoryCache is a read-through cache in front of session storage, keyed by
// token hash. It only ever holds sessions, never identities or credentials.
type InMemoryCache struct {
	cache   map[string]*cachedEntry // key: token hash
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
}

type cachedEntry struct {
	session  *Session
	cachedAt time.Time
}

func NewInMemoryCache(config CacheConfig) *InMemoryCache {
	ttl := config.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	maxSize := config.MaxSize
	if maxSize == 0 {
		maxSize = 500
	}

	return &InMemoryCache{
		cache:   make(map[string]*cachedEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func (c *InMemoryCache) Get(tokenHash string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.cache[tokenHash]
	if !exists {
		return nil, ErrCacheNotFound
	}

	if time.Since(entry.cachedAt) > c.ttl {
		delete(c.cache, tokenHash)
		return nil, ErrCacheNotFound
	}

	return entry.session, nil
}

func (c *InMemoryCache) Set(tokenHash string, session *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			break
		}
	}

	c.cache[tokenHash] = &cachedEntry{
		session:  session,
		cachedAt: time.Now(),
	}

	return nil
}

func (c *InMemoryCache) Delete(tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, tokenHash)
	return nil
}

func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedEntry)
	return nil
}

func (c *InMemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
