// Package caches provides embedding caches and a caching decorator.
//
// A Cache stores computed embedding vectors keyed by a hash of the input
// text and the model that produced them, so repeated embedding calls for
// the same text skip the provider round trip. The decorator wraps any
// embedding capability; the wrapped embedder stays unaware of caching.
package caches

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/blueberrycongee/hyde/pkg/embedding"
)

// Cache stores embedding vectors under string keys.
type Cache interface {
	// Get returns the cached vector for key, or ok=false on a miss.
	Get(ctx context.Context, key string) (vector []float64, ok bool, err error)

	// Set stores vector under key with the given TTL. A zero TTL means the
	// backend's default expiration.
	Set(ctx context.Context, key string, vector []float64, ttl time.Duration) error

	// Close releases backend resources.
	Close() error
}

// CachedEmbedder wraps an embedding capability with a vector cache.
type CachedEmbedder struct {
	inner  embedding.Embedder
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// CachedOption configures a CachedEmbedder.
type CachedOption func(*CachedEmbedder)

// WithTTL sets the expiration applied to cached vectors.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *CachedEmbedder) { c.ttl = ttl }
}

// WithLogger sets the logger for cache events.
func WithLogger(logger *slog.Logger) CachedOption {
	return func(c *CachedEmbedder) { c.logger = logger }
}

// NewCachedEmbedder wraps inner with cache.
func NewCachedEmbedder(inner embedding.Embedder, cache Cache, opts ...CachedOption) *CachedEmbedder {
	c := &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed returns the cached vector for text when present, otherwise embeds
// through the wrapped capability and stores the result. Cache failures are
// logged and treated as misses; they never fail the embedding call.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key := c.key(text)

	vec, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("embedding cache get failed", "error", err)
	} else if ok {
		return vec, nil
	}

	vec, err = c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, vec, c.ttl); err != nil {
		c.logger.Warn("embedding cache set failed", "error", err)
	}
	return vec, nil
}

// EmbedBatch embeds texts, serving cached entries and fetching only the
// misses from the wrapped capability. Order is preserved.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float64, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		vec, ok, err := c.cache.Get(ctx, c.key(text))
		if err != nil {
			c.logger.Warn("embedding cache get failed", "error", err)
		} else if ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		fetched, err := c.inner.EmbedBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, vec := range fetched {
			vectors[missingIdx[j]] = vec
			if err := c.cache.Set(ctx, c.key(missing[j]), vec, c.ttl); err != nil {
				c.logger.Warn("embedding cache set failed", "error", err)
			}
		}
	}

	return vectors, nil
}

// Model returns the wrapped embedder's model identifier.
func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

// Dimension returns the wrapped embedder's output dimensionality.
func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

// key derives a cache key from the text and the producing model, so vectors
// from different models never collide.
func (c *CachedEmbedder) key(text string) string {
	h := sha256.Sum256([]byte(c.inner.Model() + "\x00" + text))
	return "hyde:emb:" + hex.EncodeToString(h[:])
}
