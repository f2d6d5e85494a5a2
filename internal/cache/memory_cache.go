package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryPageCache is an in-process PageCache for single-instance
// deployments. Expired entries are dropped lazily.
type MemoryPageCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryPageCache creates an empty in-memory cache.
func NewMemoryPageCache() *MemoryPageCache {
	return NewMemoryPageCacheWithClock(time.Now)
}

// NewMemoryPageCacheWithClock creates a cache that reads time from now.
func NewMemoryPageCacheWithClock(now func() time.Time) *MemoryPageCache {
	return &MemoryPageCache{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (c *MemoryPageCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (c *MemoryPageCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = memoryEntry{value: stored, expiresAt: now.Add(ttl)}
	c.sweepLocked(now)
	return nil
}

func (c *MemoryPageCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *MemoryPageCache) Clear(_ context.Context, prefix string) (int, error) {
	ns := prefix + ":"

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, ns) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *MemoryPageCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryPageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// sweepLocked drops expired entries once the map has grown.
func (c *MemoryPageCache) sweepLocked(now time.Time) {
	if len(c.entries) < 1024 {
		return
	}
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

var _ PageCache = (*MemoryPageCache)(nil)
