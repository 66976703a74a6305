// Package cache provides token cache implementations.
package cache

import (
	"sync"
	"time"

	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// defaultRetention keeps records readable for 30 minutes past their
// expiry, so renewal-after-expiry within the grace window still finds
// its record.
const defaultRetention = 30 * time.Minute

// CacheOption is a functional option for configuring the cache.
type CacheOption func(*InMemoryTokenCache)

// WithRetention sets how long past a record's expiry it stays
// readable. Size it to at least the renewer's max-expiry grace window.
func WithRetention(d time.Duration) CacheOption {
	return func(c *InMemoryTokenCache) { c.retention = d }
}

// withCacheClock overrides the time source. Test hook.
func withCacheClock(now func() time.Time) CacheOption {
	return func(c *InMemoryTokenCache) { c.now = now }
}

// InMemoryTokenCache is a map-backed token cache with per-key
// atomicity and lazy expiry. Suitable for single-process deployments
// and testing; clustered deployments back this port with a shared
// store instead.
type InMemoryTokenCache struct {
	mu        sync.RWMutex
	entries   map[string]*domain.CachedTokenRecord
	retention time.Duration
	now       func() time.Time
}

// NewInMemoryTokenCache creates an empty cache.
func NewInMemoryTokenCache(opts ...CacheOption) *InMemoryTokenCache {
	c := &InMemoryTokenCache{
		entries:   make(map[string]*domain.CachedTokenRecord),
		retention: defaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a live record. Records past expiry plus the retention
// slack are evicted and read as absent.
func (c *InMemoryTokenCache) Get(key string) (*domain.CachedTokenRecord, error) {
	c.mu.RLock()
	record, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ports.ErrTokenNotFound
	}
	if c.evictable(record) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// replaced the entry.
		if current, ok := c.entries[key]; ok && c.evictable(current) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ports.ErrTokenNotFound
	}
	return record, nil
}

// Put stores a record, replacing any existing entry under the key.
func (c *InMemoryTokenCache) Put(key string, record *domain.CachedTokenRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = record
	return nil
}

// Remove deletes the entry under the key; absent keys are a no-op.
func (c *InMemoryTokenCache) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Purge evicts every record past its retention window and returns the
// number removed. Callers wanting periodic cleanup drive this from
// their own ticker.
func (c *InMemoryTokenCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, record := range c.entries {
		if c.evictable(record) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including ones not yet
// evicted.
func (c *InMemoryTokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryTokenCache) evictable(record *domain.CachedTokenRecord) bool {
	if record.Expires.IsZero() {
		return false
	}
	return c.now().After(record.Expires.Add(c.retention))
}

// Ensure InMemoryTokenCache implements the cache port.
var _ ports.TokenCache = (*InMemoryTokenCache)(nil)
