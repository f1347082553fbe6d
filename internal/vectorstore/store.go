package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// initState tracks the one-time collection initialization.
type initState int

const (
	stateUninitialized initState = iota
	stateAttaching
	stateCreating
	stateReady
	stateFailed
)

// Store wraps an embedding capability and a vector index behind the
// upsert/nearest contract. The collection handle is initialized lazily on
// first use: attach to an existing collection, create it when missing, and
// retry the attach once if creation loses a race with another process.
type Store struct {
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	collection string

	mu    sync.Mutex
	state initState
}

// New creates a Store over the given embedding service and vector index.
func New(embedder driven.EmbeddingService, index driven.VectorIndex, collection string) *Store {
	return &Store{
		embedder:   embedder,
		index:      index,
		collection: collection,
	}
}

// EnsureReady establishes or verifies the underlying collection.
// Idempotent; safe under concurrent first use. After the first success every
// call is a no-op. A failed attempt leaves the store retryable.
func (s *Store) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateReady {
		return nil
	}

	s.state = stateAttaching
	err := s.index.AttachCollection(ctx, s.collection)
	if err == nil {
		s.state = stateReady
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.state = stateFailed
		return fmt.Errorf("%w: attach %q: %v", domain.ErrStoreInit, s.collection, err)
	}

	s.state = stateCreating
	if createErr := s.index.CreateCollection(ctx, s.collection); createErr != nil {
		// Another process may have created the collection concurrently;
		// retry the attach path once before surfacing the failure.
		if attachErr := s.index.AttachCollection(ctx, s.collection); attachErr != nil {
			s.state = stateFailed
			return fmt.Errorf("%w: create %q: %v", domain.ErrStoreInit, s.collection, createErr)
		}
	}

	s.state = stateReady
	return nil
}

// Upsert embeds each chunk's text and writes (vector, text, metadata)
// triples to the index in chunk sequence order.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.EnsureReady(ctx); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embedding: %v", domain.ErrStoreWrite, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedding returned %d vectors for %d chunks", domain.ErrStoreWrite, len(vectors), len(chunks))
	}

	points := make([]driven.Point, len(chunks))
	for i, c := range chunks {
		points[i] = driven.Point{
			ID:       uuid.NewString(),
			Vector:   vectors[i],
			Text:     c.Text,
			Metadata: c.Metadata,
		}
	}

	if err := s.index.Upsert(ctx, points); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	return nil
}

// Nearest embeds the query and returns up to k chunks ordered by descending
// relevance. An empty collection yields an empty slice.
func (s *Store) Nearest(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]domain.RetrievedChunk, len(hits))
	for i, h := range hits {
		results[i] = domain.RetrievedChunk{
			Text:     h.Text,
			Metadata: h.Metadata,
			Rank:     i,
			Score:    h.Score,
		}
	}
	return results, nil
}

// HealthCheck reports whether the underlying index is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.index.HealthCheck(ctx)
}
