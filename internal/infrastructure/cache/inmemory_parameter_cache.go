package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryParameterCache holds the parameter snapshot in process memory.
// This is suitable for single-instance deployments and testing.
type InMemoryParameterCache struct {
	mu        sync.RWMutex
	params    map[string]string
	expiresAt time.Time
	ttl       time.Duration
}

// NewInMemoryParameterCache creates a new in-memory parameter cache.
// A zero TTL means entries never expire.
func NewInMemoryParameterCache(ttl time.Duration) *InMemoryParameterCache {
	return &InMemoryParameterCache{ttl: ttl}
}

// GetAll returns the cached snapshot, or nil when empty or expired
func (c *InMemoryParameterCache) GetAll(ctx context.Context) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.params == nil {
		return nil, nil
	}
	if c.ttl > 0 && time.Now().After(c.expiresAt) {
		return nil, nil
	}

	snapshot := make(map[string]string, len(c.params))
	for k, v := range c.params {
		snapshot[k] = v
	}
	return snapshot, nil
}

// SetAll replaces the cached snapshot
func (c *InMemoryParameterCache) SetAll(ctx context.Context, params map[string]string) error {
	snapshot := make(map[string]string, len(params))
	for k, v := range params {
		snapshot[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = snapshot
	c.expiresAt = time.Now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached snapshot
func (c *InMemoryParameterCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = nil
	return nil
}

// Close releases resources; a no-op for the in-memory cache
func (c *InMemoryParameterCache) Close() error {
	return nil
}

// Ensure InMemoryParameterCache implements ParameterCache
var _ ParameterCache = (*InMemoryParameterCache)(nil)
