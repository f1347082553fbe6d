// Package redis provides a Redis-backed cache decorator for the embedding
// service. Re-ingesting the same document skips the embedding API entirely.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.EmbeddingService = (*EmbeddingCache)(nil)

const (
	embeddingPrefix = "embedding:"

	// DefaultTTL keeps cached vectors for a week. Embeddings for a given
	// model and text never change, so the TTL only bounds memory.
	DefaultTTL = 7 * 24 * time.Hour
)

// EmbeddingCache wraps an EmbeddingService with a Redis read-through cache
// keyed by model name and content hash.
type EmbeddingCache struct {
	inner  driven.EmbeddingService
	client *redis.Client
	ttl    time.Duration
}

// NewEmbeddingCache creates a cache decorator around inner
func NewEmbeddingCache(inner driven.EmbeddingService, client *redis.Client, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EmbeddingCache{inner: inner, client: client, ttl: ttl}
}

// Embed returns embeddings for texts, serving cache hits from Redis and
// embedding only the misses. The returned slice matches the input order.
func (c *EmbeddingCache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		vec, err := c.get(ctx, text)
		if err == nil && vec != nil {
			results[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embedded, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(missTexts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embedded), len(missTexts))
	}

	for j, vec := range embedded {
		results[missIdx[j]] = vec
		// Cache write failures are not fatal; the next ingest re-embeds.
		c.put(ctx, missTexts[j], vec)
	}
	return results, nil
}

// EmbedQuery embeds a single query with the same cache policy
func (c *EmbeddingCache) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if vec, err := c.get(ctx, query); err == nil && vec != nil {
		return vec, nil
	}

	vec, err := c.inner.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	c.put(ctx, query, vec)
	return vec, nil
}

// Dimensions returns the embedding dimension size
func (c *EmbeddingCache) Dimensions() int {
	return c.inner.Dimensions()
}

// Model returns the model name being used
func (c *EmbeddingCache) Model() string {
	return c.inner.Model()
}

// HealthCheck verifies both the cache and the wrapped service
func (c *EmbeddingCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("embedding cache unreachable: %w", err)
	}
	return c.inner.HealthCheck(ctx)
}

// Close closes the wrapped service. The Redis client is shared and closed
// by its owner.
func (c *EmbeddingCache) Close() error {
	return c.inner.Close()
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return embeddingPrefix + c.inner.Model() + ":" + hex.EncodeToString(sum[:])
}

func (c *EmbeddingCache) get(ctx context.Context, text string) ([]float32, error) {
	data, err := c.client.Get(ctx, c.key(text)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *EmbeddingCache) put(ctx context.Context, text string, vec []float32) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(text), data, c.ttl)
}
