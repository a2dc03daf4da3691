package geo

import (
	"context"
	"sync"
	"time"
)

// Cache stores serialized geocoding results keyed by normalized input.
// Entries are an optimization, not a source of truth: they are idempotently
// recomputable, so implementations need no transactional guarantees.
type Cache interface {
	// Get returns the cached value for key, or ok=false on a miss or an
	// expired entry.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded in-process Cache. Expired entries are
// evicted lazily on read; there is no background sweep.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}

	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}
