package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Client)(nil)

// Client implements driven.VectorIndex against the Chroma REST API.
// It serves both a self-hosted server (URL-addressed) and Chroma Cloud
// (tenant/database/API-key addressed); the two differ only in host and
// authentication, chosen once at construction.
type Client struct {
	baseURL    string // host, no trailing slash
	apiKey     string
	tenant     string
	database   string
	httpClient *http.Client

	mu           sync.RWMutex
	collectionID string
}

// Config holds Chroma connection configuration.
type Config struct {
	// URL is the server endpoint (e.g. http://localhost:8000)
	URL string

	// APIKey authenticates against Chroma Cloud; empty for self-hosted
	APIKey string

	// Tenant and Database address the collection namespace
	Tenant   string
	Database string

	// Timeout for HTTP requests
	Timeout time.Duration
}

const cloudURL = "https://api.trychroma.com"

// NewSelfHosted creates a client for a URL-addressed Chroma server.
func NewSelfHosted(url string) *Client {
	return New(Config{URL: url, Tenant: "default_tenant", Database: "default_database"})
}

// NewCloud creates a client for Chroma Cloud.
func NewCloud(apiKey, tenant, database string) *Client {
	return New(Config{URL: cloudURL, APIKey: apiKey, Tenant: tenant, Database: database})
}

// New creates a client from explicit configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	tenant := cfg.Tenant
	if tenant == "" {
		tenant = "default_tenant"
	}
	database := cfg.Database
	if database == "" {
		database = "default_database"
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.URL, "/"),
		apiKey:   cfg.APIKey,
		tenant:   tenant,
		database: database,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// collection is the API representation of a collection.
type collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) collectionsURL() string {
	return fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s/collections", c.baseURL, c.tenant, c.database)
}

// AttachCollection attaches to an existing collection by name.
func (c *Client) AttachCollection(ctx context.Context, name string) error {
	var coll collection
	status, err := c.doJSON(ctx, http.MethodGet, c.collectionsURL()+"/"+name, nil, &coll)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	if status != http.StatusOK {
		return fmt.Errorf("attach collection %q: status %d", name, status)
	}

	c.mu.Lock()
	c.collectionID = coll.ID
	c.mu.Unlock()
	return nil
}

// CreateCollection creates a new empty collection with the given name.
func (c *Client) CreateCollection(ctx context.Context, name string) error {
	body := map[string]any{"name": name}
	var coll collection
	status, err := c.doJSON(ctx, http.MethodPost, c.collectionsURL(), body, &coll)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("create collection %q: status %d", name, status)
	}

	c.mu.Lock()
	c.collectionID = coll.ID
	c.mu.Unlock()
	return nil
}

// Upsert writes points to the attached collection.
func (c *Client) Upsert(ctx context.Context, points []driven.Point) error {
	id, err := c.currentCollection()
	if err != nil {
		return err
	}

	ids := make([]string, len(points))
	embeddings := make([][]float32, len(points))
	documents := make([]string, len(points))
	metadatas := make([]map[string]any, len(points))
	for i, p := range points {
		ids[i] = p.ID
		embeddings[i] = p.Vector
		documents[i] = p.Text
		metadatas[i] = p.Metadata
	}

	body := map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	status, err := c.doJSON(ctx, http.MethodPost, c.collectionsURL()+"/"+id+"/upsert", body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("upsert: status %d", status)
	}
	return nil
}

// queryResponse is the nested-array shape Chroma returns for queries.
type queryResponse struct {
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Search returns up to k hits ordered by descending relevance.
func (c *Client) Search(ctx context.Context, vector []float32, k int) ([]driven.Hit, error) {
	id, err := c.currentCollection()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 4
	}

	body := map[string]any{
		"query_embeddings": [][]float32{vector},
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp queryResponse
	status, err := c.doJSON(ctx, http.MethodPost, c.collectionsURL()+"/"+id+"/query", body, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("query: status %d", status)
	}

	if len(resp.Documents) == 0 {
		return nil, nil
	}

	docs := resp.Documents[0]
	hits := make([]driven.Hit, len(docs))
	for i := range docs {
		hit := driven.Hit{Text: docs[i]}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			// Cosine distance; similarity = 1 - distance
			hit.Score = 1 - resp.Distances[0][i]
		}
		hits[i] = hit
	}
	return hits, nil
}

// HealthCheck verifies the index is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	status, err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/v2/heartbeat", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("heartbeat: status %d", status)
	}
	return nil
}

func (c *Client) currentCollection() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.collectionID == "" {
		return "", fmt.Errorf("no collection attached")
	}
	return c.collectionID, nil
}

// doJSON performs one request and decodes the response when out is non-nil.
// Non-2xx statuses are returned to the caller, not treated as transport
// errors: attach needs to see the 404.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Chroma-Token", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}
