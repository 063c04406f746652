// Package cache is an optional in-memory cache for API responses. It sits
// in front of the scraper; the scraper itself never caches.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	value     any
	createdAt time.Time
}

// Cache is a TTL cache keyed by request identity. It is safe for concurrent
// use. A nil *Cache is a valid, always-missing cache.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	done       chan struct{}
	closeOnce  sync.Once
}

// New creates a Cache whose entries live for ttl. It returns nil, a
// disabled cache, when ttl <= 0. A background goroutine evicts expired
// entries until Close is called.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		return nil
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	c := &Cache{
		store:      make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// TitleKey identifies a title lookup.
func TitleKey(id, locale string, episodes bool) string {
	return "title|" + id + "|" + locale + "|" + strconv.FormatBool(episodes)
}

// TitlePrefix matches every cached lookup of one title, in any locale.
func TitlePrefix(id string) string {
	return "title|" + id + "|"
}

// SearchKey identifies a search. Queries are case-insensitive.
func SearchKey(query, locale, contentType string, year int) string {
	return "search|" + strings.ToLower(strings.TrimSpace(query)) + "|" + locale + "|" + contentType + "|" + strconv.Itoa(year)
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.createdAt) > c.ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. If the cache is at capacity, a random entry
// is evicted to make room.
func (c *Cache) Set(key string, value any) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{value: value, createdAt: c.now()}
}

// Invalidate drops every entry whose key starts with prefix and returns how
// many were dropped. An empty prefix clears the cache.
func (c *Cache) Invalidate(prefix string) int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() { close(c.done) })
}

// cleanupLoop evicts expired entries once per TTL, at most every minute.
func (c *Cache) cleanupLoop() {
	interval := c.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
