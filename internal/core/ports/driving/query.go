package driving

import (
	"context"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
)

// QueryService answers natural-language questions against the vector store
type QueryService interface {
	// Answer retrieves the k most relevant chunks, assembles them into a
	// context block and asks the completion model. k <= 0 uses the
	// configured default.
	Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error)
}

// DocumentService exposes the ingest provenance log
type DocumentService interface {
	// List retrieves ingest records, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.IngestRecord, error)

	// Count returns the total number of ingest records
	Count(ctx context.Context) (int, error)
}
