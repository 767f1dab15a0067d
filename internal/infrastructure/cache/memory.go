package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ecosnap/backend/internal/domain"
	"github.com/ecosnap/backend/internal/infrastructure/metrics"
)

// DefaultSweepInterval is how often expired entries are purged
const DefaultSweepInterval = 10 * time.Minute

// entry is one cached value and its expiry
type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is a process-local TTL cache for scraped attribute sets.
// It is safe for concurrent use by request goroutines.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewMemoryCache creates a cache and starts its sweeper. A zero interval
// uses DefaultSweepInterval. Call Close to stop the sweeper.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	c := &MemoryCache{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go c.sweepLoop(sweepInterval)
	return c
}

// Get returns the value stored under key, or domain.ErrCacheMiss
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		metrics.ObserveCacheLookup(metrics.CacheMiss)
		return nil, domain.ErrCacheMiss
	}

	metrics.ObserveCacheLookup(metrics.CacheHit)
	return e.value, nil
}

// Set stores value under key for ttl. The value is kept in its JSON form
// (maps and slices), so callers never share memory with the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var stored interface{}
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: stored, expiresAt: c.now().Add(ttl)}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.SetCacheEntries(size)
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	metrics.SetCacheEntries(size)
	return nil
}

// Exists reports whether key holds an unexpired value
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return ok && !e.expired(c.now()), nil
}

// Size returns the number of stored entries, expired ones included
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	metrics.SetCacheEntries(0)
}

// Close stops the sweeper. It is safe to call more than once.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweep removes expired entries
func (c *MemoryCache) sweep() {
	c.mu.Lock()
	now := c.now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.SetCacheEntries(size)
}
