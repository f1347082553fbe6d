package mocks

import (
	"context"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
)

// MockTextExtractor is a scripted TextExtractor for testing.
type MockTextExtractor struct {
	Text string
	Err  error

	// Calls counts Extract invocations
	Calls int
}

// NewMockTextExtractor creates a mock returning the given text.
func NewMockTextExtractor(text string) *MockTextExtractor {
	return &MockTextExtractor{Text: text}
}

func (m *MockTextExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// MockPageRasterizer is a scripted PageRasterizer for testing.
type MockPageRasterizer struct {
	Pages [][]byte
	Err   error
}

// NewMockPageRasterizer creates a mock rendering n fake page images.
func NewMockPageRasterizer(n int) *MockPageRasterizer {
	pages := make([][]byte, n)
	for i := range pages {
		pages[i] = []byte{0xFF, 0xD8, byte(i)} // JPEG-ish marker plus page index
	}
	return &MockPageRasterizer{Pages: pages}
}

func (m *MockPageRasterizer) Render(ctx context.Context, content []byte) ([][]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Pages, nil
}

// MockIngestLog is an in-memory IngestLog for testing.
type MockIngestLog struct {
	Records []*domain.IngestRecord
	Err     error
}

// NewMockIngestLog creates an empty in-memory ingest log.
func NewMockIngestLog() *MockIngestLog {
	return &MockIngestLog{}
}

func (m *MockIngestLog) Save(ctx context.Context, rec *domain.IngestRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, rec)
	return nil
}

func (m *MockIngestLog) List(ctx context.Context, limit, offset int) ([]*domain.IngestRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if offset >= len(m.Records) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(m.Records) {
		end = len(m.Records)
	}
	return m.Records[offset:end], nil
}

func (m *MockIngestLog) Count(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Records), nil
}
