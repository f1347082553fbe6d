package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// MockVectorIndex is an in-memory cosine-similarity implementation of
// VectorIndex for testing.
type MockVectorIndex struct {
	mu       sync.Mutex
	attached bool
	created  bool
	points   []driven.Point

	// AttachErr and CreateErr override the default attach/create behavior
	AttachErr error
	CreateErr error
	// AttachNotFoundOnce makes only the first attach report not-found,
	// simulating a collection created concurrently by another process
	AttachNotFoundOnce bool
	// UpsertErr makes Upsert fail
	UpsertErr error
	// SearchErr makes Search fail
	SearchErr error

	// AttachCalls and CreateCalls count initialization attempts
	AttachCalls int
	CreateCalls int
}

// NewMockVectorIndex creates an index whose collection does not exist yet.
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{}
}

// NewMockVectorIndexExisting creates an index whose collection already exists.
func NewMockVectorIndexExisting() *MockVectorIndex {
	return &MockVectorIndex{created: true}
}

func (m *MockVectorIndex) AttachCollection(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttachCalls++
	if m.AttachErr != nil {
		return m.AttachErr
	}
	if m.AttachNotFoundOnce {
		m.AttachNotFoundOnce = false
		return domain.ErrNotFound
	}
	if !m.created {
		return domain.ErrNotFound
	}
	m.attached = true
	return nil
}

func (m *MockVectorIndex) CreateCollection(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.created = true
	m.attached = true
	return nil
}

func (m *MockVectorIndex) Upsert(ctx context.Context, points []driven.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.points = append(m.points, points...)
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, k int) ([]driven.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	hits := make([]driven.Hit, 0, len(m.points))
	for _, p := range m.points {
		hits = append(hits, driven.Hit{
			Text:     p.Text,
			Metadata: p.Metadata,
			Score:    cosine(vector, p.Vector),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	return nil
}

// Len returns the number of stored points.
func (m *MockVectorIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
