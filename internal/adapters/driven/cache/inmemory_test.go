//go:build unit

package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

var cacheNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func record(id string, expires time.Time) *domain.CachedTokenRecord {
	return &domain.CachedTokenRecord{
		ID:         id,
		Expires:    expires,
		Principal:  "alice",
		Properties: domain.DefaultRenewingFlags().Properties(),
	}
}

// TestInMemoryTokenCache_PutGetRemove verifies the basic store
// operations and the not-found sentinel.
func TestInMemoryTokenCache_PutGetRemove(t *testing.T) {
	c := NewInMemoryTokenCache(withCacheClock(func() time.Time { return cacheNow }))
	stored := record("_a", cacheNow.Add(time.Hour))

	if _, err := c.Get("_a"); !errors.Is(err, ports.ErrTokenNotFound) {
		t.Errorf("empty cache Get = %v, want ErrTokenNotFound", err)
	}
	if err := c.Put("_a", stored); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := c.Get("_a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != stored {
		t.Error("Get returned a different record")
	}
	if err := c.Remove("_a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := c.Get("_a"); !errors.Is(err, ports.ErrTokenNotFound) {
		t.Error("removed record should be absent")
	}
	if err := c.Remove("_a"); err != nil {
		t.Errorf("removing an absent key should be a no-op, got %v", err)
	}
}

// TestInMemoryTokenCache_RetentionWindow verifies expired records stay
// readable through the retention slack and vanish after it.
func TestInMemoryTokenCache_RetentionWindow(t *testing.T) {
	current := cacheNow
	c := NewInMemoryTokenCache(
		WithRetention(30*time.Minute),
		withCacheClock(func() time.Time { return current }),
	)
	c.Put("_a", record("_a", cacheNow))

	current = cacheNow.Add(29 * time.Minute)
	if _, err := c.Get("_a"); err != nil {
		t.Errorf("record inside the retention window should be readable, got %v", err)
	}

	current = cacheNow.Add(31 * time.Minute)
	if _, err := c.Get("_a"); !errors.Is(err, ports.ErrTokenNotFound) {
		t.Errorf("record past retention should be evicted, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("lazy eviction should drop the entry")
	}
}

// TestInMemoryTokenCache_ZeroExpiryNeverEvicts verifies records without
// an expiry are kept indefinitely.
func TestInMemoryTokenCache_ZeroExpiryNeverEvicts(t *testing.T) {
	current := cacheNow
	c := NewInMemoryTokenCache(withCacheClock(func() time.Time { return current }))
	c.Put("_a", record("_a", time.Time{}))

	current = cacheNow.Add(1000 * time.Hour)
	if _, err := c.Get("_a"); err != nil {
		t.Errorf("record without expiry should be kept, got %v", err)
	}
	if c.Purge() != 0 {
		t.Error("Purge should not touch records without expiry")
	}
}

// TestInMemoryTokenCache_Purge verifies bulk eviction counts only
// records past retention.
func TestInMemoryTokenCache_Purge(t *testing.T) {
	current := cacheNow
	c := NewInMemoryTokenCache(
		WithRetention(time.Minute),
		withCacheClock(func() time.Time { return current }),
	)
	c.Put("_stale", record("_stale", cacheNow.Add(-time.Hour)))
	c.Put("_live", record("_live", cacheNow.Add(time.Hour)))

	if removed := c.Purge(); removed != 1 {
		t.Errorf("Purge removed %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d after purge", c.Len())
	}
	if _, err := c.Get("_live"); err != nil {
		t.Error("live record should survive purge")
	}
}

// TestInMemoryTokenCache_Concurrent verifies concurrent puts, gets, and
// removes do not race.
func TestInMemoryTokenCache_Concurrent(t *testing.T) {
	c := NewInMemoryTokenCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("_t%d", n)
			for j := 0; j < 100; j++ {
				c.Put(key, record(key, cacheNow.Add(time.Hour)))
				c.Get(key)
				c.Remove(key)
			}
		}(i)
	}
	wg.Wait()
}
