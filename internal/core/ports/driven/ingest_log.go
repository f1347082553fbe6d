package driven

import (
	"context"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
)

// IngestLog records ingest provenance (PostgreSQL).
// The log is optional infrastructure: the pipeline works without it.
type IngestLog interface {
	// Save stores one ingest record
	Save(ctx context.Context, rec *domain.IngestRecord) error

	// List retrieves records ordered by ingest time, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.IngestRecord, error)

	// Count returns the total number of records
	Count(ctx context.Context) (int, error)
}
