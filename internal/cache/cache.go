// Package cache keeps fetched page bodies in memory for a bounded time so that
// a refresh or a repeated candidate does not hit the same site twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type entry struct {
	body      []byte
	expiresAt time.Time
}

type Cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]entry
	now   func() time.Time
}

// New returns a cache with the given time to live. A zero ttl disables caching.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func (c *Cache) Set(key string, body []byte) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanup()
	c.items[Key(key)] = entry{
		body:      body,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	k := Key(key)
	item, ok := c.items[k]
	if !ok {
		return nil, false
	}
	if c.now().After(item.expiresAt) {
		delete(c.items, k)
		return nil, false
	}
	return item.body, true
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}

// Key hashes a URL into a fixed-size map key.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// cleanup drops expired entries. Caller holds mu.
func (c *Cache) cleanup() {
	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
