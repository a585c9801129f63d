// Package redis provides a Redis-backed embedding cache so independent
// processes embedding the same corpus can share computed vectors.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultTTL applies to entries stored with a zero TTL.
const DefaultTTL = 24 * time.Hour

// Cache is a Redis-backed vector cache.
type Cache struct {
	client     goredis.UniversalClient
	defaultTTL time.Duration
	owned      bool
}

// Config holds configuration for the Redis cache.
type Config struct {
	// Addr is the Redis server address (host:port).
	Addr string

	Password string
	DB       int

	// DefaultTTL applies to entries stored with a zero TTL.
	DefaultTTL time.Duration
}

// New creates a Redis vector cache and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{client: client, defaultTTL: cfg.DefaultTTL, owned: true}, nil
}

// NewFromClient wraps an existing Redis client. The caller keeps ownership
// of the client; Close is a no-op.
func NewFromClient(client goredis.UniversalClient, defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{client: client, defaultTTL: defaultTTL}
}

// Get returns the cached vector for key, or ok=false on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]float64, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached vector: %w", err)
	}
	return vec, true, nil
}

// Set stores vector under key. A zero TTL uses the cache default.
func (c *Cache) Set(ctx context.Context, key string, vector []float64, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the underlying client unless it was supplied by the caller.
func (c *Cache) Close() error {
	if !c.owned {
		return nil
	}
	return c.client.Close()
}
