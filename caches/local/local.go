// Package local provides an in-process embedding cache backed by
// patrickmn/go-cache.
package local

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultExpiration applies to entries stored with a zero TTL.
	DefaultExpiration = 1 * time.Hour

	// DefaultCleanupInterval controls how often expired entries are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// Cache is an in-memory vector cache.
type Cache struct {
	store *gocache.Cache
}

// Config holds configuration for the local cache.
type Config struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// New creates an in-memory vector cache.
func New(cfg Config) *Cache {
	if cfg.DefaultExpiration <= 0 {
		cfg.DefaultExpiration = DefaultExpiration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	return &Cache{store: gocache.New(cfg.DefaultExpiration, cfg.CleanupInterval)}
}

// Get returns the cached vector for key, or ok=false on a miss.
func (c *Cache) Get(_ context.Context, key string) ([]float64, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	vec, ok := v.([]float64)
	if !ok {
		return nil, false, nil
	}
	return vec, true, nil
}

// Set stores vector under key. A zero TTL uses the cache default.
func (c *Cache) Set(_ context.Context, key string, vector []float64, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, vector, ttl)
	return nil
}

// Close flushes the cache.
func (c *Cache) Close() error {
	c.store.Flush()
	return nil
}
