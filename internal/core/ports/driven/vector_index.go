package driven

import (
	"context"
)

// Point is one (vector, text, metadata) triple written to the index.
type Point struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]any
}

// Hit is one ranked similarity-search result.
type Hit struct {
	Text     string
	Metadata map[string]any
	Score    float64
}

// VectorIndex handles vector storage and nearest-neighbor search.
// Implementations: Chroma self-hosted (URL) and Chroma Cloud
// (tenant/database/API key). Both are interchangeable behind this contract.
type VectorIndex interface {
	// AttachCollection attaches to an existing collection by name.
	// Returns an error wrapping domain.ErrNotFound when the collection
	// does not exist.
	AttachCollection(ctx context.Context, name string) error

	// CreateCollection creates a new empty collection with the given name
	CreateCollection(ctx context.Context, name string) error

	// Upsert writes points to the attached collection
	Upsert(ctx context.Context, points []Point) error

	// Search returns up to k hits ordered by descending relevance.
	// An empty collection yields an empty slice, not an error.
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)

	// HealthCheck verifies the index is reachable
	HealthCheck(ctx context.Context) error
}
