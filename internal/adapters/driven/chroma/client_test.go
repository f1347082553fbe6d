package chroma

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// fakeChroma is a minimal in-memory Chroma API for adapter tests.
type fakeChroma struct {
	cols        map[string]string // name -> id
	upserts     int
	queryResult queryResponse
}

func newFakeChroma() *fakeChroma {
	return &fakeChroma{cols: make(map[string]string)}
}

func (f *fakeChroma) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v2/tenants/default_tenant/databases/default_database/collections"

	mux.HandleFunc("GET /api/v2/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int64{"nanosecond heartbeat": 1})
	})
	mux.HandleFunc("GET "+base+"/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		id, ok := f.cols[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(collection{ID: id, Name: name})
	})
	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		id := "coll-" + req.Name
		f.cols[req.Name] = id
		_ = json.NewEncoder(w).Encode(collection{ID: id, Name: req.Name})
	})
	mux.HandleFunc("POST "+base+"/{id}/upsert", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs        []string         `json:"ids"`
			Embeddings [][]float32      `json:"embeddings"`
			Documents  []string         `json:"documents"`
			Metadatas  []map[string]any `json:"metadatas"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad upsert body: %v", err)
		}
		if len(req.IDs) != len(req.Documents) || len(req.IDs) != len(req.Embeddings) {
			t.Errorf("mismatched upsert arrays: %d ids, %d docs", len(req.IDs), len(req.Documents))
		}
		f.upserts += len(req.IDs)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST "+base+"/{id}/query", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.queryResult)
	})

	return mux
}

func newTestClient(t *testing.T, fake *fakeChroma) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	return NewSelfHosted(server.URL), server.Close
}

func TestAttachCollection_NotFound(t *testing.T) {
	client, done := newTestClient(t, newFakeChroma())
	defer done()

	err := client.AttachCollection(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateThenAttach(t *testing.T) {
	fake := newFakeChroma()
	client, done := newTestClient(t, fake)
	defer done()

	if err := client.CreateCollection(context.Background(), "rag-collection"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := client.AttachCollection(context.Background(), "rag-collection"); err != nil {
		t.Fatalf("attach after create: %v", err)
	}
}

func TestUpsert_RequiresAttachedCollection(t *testing.T) {
	client, done := newTestClient(t, newFakeChroma())
	defer done()

	err := client.Upsert(context.Background(), []driven.Point{{ID: "p1", Text: "text"}})
	if err == nil {
		t.Error("expected error without an attached collection")
	}
}

func TestUpsert_WritesPoints(t *testing.T) {
	fake := newFakeChroma()
	client, done := newTestClient(t, fake)
	defer done()

	if err := client.CreateCollection(context.Background(), "rag-collection"); err != nil {
		t.Fatalf("create: %v", err)
	}

	points := []driven.Point{
		{ID: "p1", Vector: []float32{0.1}, Text: "first", Metadata: map[string]any{"source": "a"}},
		{ID: "p2", Vector: []float32{0.2}, Text: "second", Metadata: map[string]any{"source": "a"}},
	}
	if err := client.Upsert(context.Background(), points); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if fake.upserts != 2 {
		t.Errorf("expected 2 upserted points, got %d", fake.upserts)
	}
}

func TestSearch_MapsHits(t *testing.T) {
	fake := newFakeChroma()
	fake.queryResult = queryResponse{
		Documents: [][]string{{"nearest text", "second text"}},
		Metadatas: [][]map[string]any{{{"source": "x"}, {"source": "y"}}},
		Distances: [][]float64{{0.1, 0.4}},
	}
	client, done := newTestClient(t, fake)
	defer done()

	if err := client.CreateCollection(context.Background(), "rag-collection"); err != nil {
		t.Fatalf("create: %v", err)
	}

	hits, err := client.Search(context.Background(), []float32{0.1}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Text != "nearest text" {
		t.Errorf("unexpected top hit %q", hits[0].Text)
	}
	if hits[0].Metadata["source"] != "x" {
		t.Errorf("metadata not mapped: %v", hits[0].Metadata)
	}
	// distance 0.1 -> similarity 0.9
	if hits[0].Score < 0.89 || hits[0].Score > 0.91 {
		t.Errorf("unexpected score %f", hits[0].Score)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not ordered by descending score")
	}
}

func TestSearch_EmptyCollection(t *testing.T) {
	fake := newFakeChroma()
	fake.queryResult = queryResponse{Documents: [][]string{{}}}
	client, done := newTestClient(t, fake)
	defer done()

	if err := client.CreateCollection(context.Background(), "rag-collection"); err != nil {
		t.Fatalf("create: %v", err)
	}

	hits, err := client.Search(context.Background(), []float32{0.1}, 4)
	if err != nil {
		t.Fatalf("expected no error for empty collection, got %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestHealthCheck(t *testing.T) {
	client, done := newTestClient(t, newFakeChroma())
	defer done()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewCloud_UsesTokenHeader(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Chroma-Token")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Config{URL: server.URL, APIKey: "ck-secret", Tenant: "team", Database: "prod"})
	_ = client.AttachCollection(context.Background(), "rag-collection")

	if gotToken != "ck-secret" {
		t.Errorf("expected API key header, got %q", gotToken)
	}
}
