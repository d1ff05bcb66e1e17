package api

import (
	"sync"
	"time"

	"github.com/user/atmos-energy/internal/usage"
)

// Cache keeps merged readings per requested month count for the lifetime of
// the process. It never holds credentials or portal sessions.
type Cache struct {
	mu      sync.RWMutex
	entries map[int]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	readings  []usage.Reading
	fetchedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[int]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *Cache) Get(months int) ([]usage.Reading, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[months]
	if !ok || c.ttl <= 0 || c.now().Sub(e.fetchedAt) > c.ttl {
		return nil, time.Time{}, false
	}
	return e.readings, e.fetchedAt, true
}

func (c *Cache) Set(months int, readings []usage.Reading) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	fetchedAt := c.now()
	c.entries[months] = cacheEntry{readings: readings, fetchedAt: fetchedAt}
	return fetchedAt
}
