package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven/mocks"
	goredis "github.com/redis/go-redis/v9"
)

// setupTestCache creates a miniredis-backed EmbeddingCache around the
// deterministic mock embedder
func setupTestCache(t *testing.T) (*EmbeddingCache, *mocks.MockEmbeddingService, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	inner := mocks.NewMockEmbeddingService()
	cache := NewEmbeddingCache(inner, client, 0)

	return cache, inner, func() {
		client.Close()
		mr.Close()
	}
}

func TestEmbeddingCache_MissThenHit(t *testing.T) {
	cache, inner, cleanup := setupTestCache(t)
	defer cleanup()

	ctx := context.Background()
	texts := []string{"first chunk", "second chunk"}

	first, err := cache.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if inner.EmbedCalls != 1 {
		t.Fatalf("inner calls after miss = %d, want 1", inner.EmbedCalls)
	}

	second, err := cache.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("Embed() second call error = %v", err)
	}
	if inner.EmbedCalls != 1 {
		t.Errorf("inner calls after hit = %d, want 1 (should be served from cache)", inner.EmbedCalls)
	}

	for i := range texts {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("vector %d length changed between calls", i)
		}
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("vector %d differs at %d: %v != %v", i, j, first[i][j], second[i][j])
			}
		}
	}
}

func TestEmbeddingCache_PartialHitEmbedsOnlyMisses(t *testing.T) {
	cache, inner, cleanup := setupTestCache(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := cache.Embed(ctx, []string{"cached text"}); err != nil {
		t.Fatalf("priming Embed() error = %v", err)
	}

	results, err := cache.Embed(ctx, []string{"new text", "cached text"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, vec := range results {
		if len(vec) != inner.Dimensions() {
			t.Errorf("result %d has %d dims, want %d", i, len(vec), inner.Dimensions())
		}
	}
	// Priming call plus one call for the single miss
	if inner.EmbedCalls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.EmbedCalls)
	}
}

func TestEmbeddingCache_EmbedQuery(t *testing.T) {
	cache, inner, cleanup := setupTestCache(t)
	defer cleanup()

	ctx := context.Background()

	vec, err := cache.EmbedQuery(ctx, "what is the answer")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vec) != inner.Dimensions() {
		t.Fatalf("got %d dims, want %d", len(vec), inner.Dimensions())
	}

	if inner.QueryCalls != 1 {
		t.Fatalf("inner query calls = %d, want 1", inner.QueryCalls)
	}
	if _, err := cache.EmbedQuery(ctx, "what is the answer"); err != nil {
		t.Fatalf("EmbedQuery() second call error = %v", err)
	}
	if inner.QueryCalls != 1 {
		t.Error("second EmbedQuery hit the inner service")
	}
}

func TestEmbeddingCache_InnerFailurePropagates(t *testing.T) {
	cache, inner, cleanup := setupTestCache(t)
	defer cleanup()

	wantErr := errors.New("embedding quota exceeded")
	inner.SetFailNext(wantErr)

	_, err := cache.Embed(context.Background(), []string{"uncached"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestEmbeddingCache_RedisDownFallsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	inner := mocks.NewMockEmbeddingService()
	cache := NewEmbeddingCache(inner, client, 0)

	mr.Close() // cache unreachable from here on

	vecs, err := cache.Embed(context.Background(), []string{"still works"})
	if err != nil {
		t.Fatalf("Embed() with dead cache error = %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != inner.Dimensions() {
		t.Fatalf("unexpected result shape with dead cache")
	}
}

func TestEmbeddingCache_Passthroughs(t *testing.T) {
	cache, inner, cleanup := setupTestCache(t)
	defer cleanup()

	if cache.Dimensions() != inner.Dimensions() {
		t.Errorf("Dimensions() = %d, want %d", cache.Dimensions(), inner.Dimensions())
	}
	if cache.Model() != inner.Model() {
		t.Errorf("Model() = %q, want %q", cache.Model(), inner.Model())
	}
	if err := cache.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
