package postgres

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IngestLog = (*IngestLog)(nil)

// IngestLog implements driven.IngestLog using PostgreSQL. It records what
// went into the vector index; the chunks themselves live only in the index.
type IngestLog struct {
	db *DB
}

// NewIngestLog creates a new IngestLog
func NewIngestLog(db *DB) *IngestLog {
	return &IngestLog{db: db}
}

// Save stores one ingest record
func (l *IngestLog) Save(ctx context.Context, rec *domain.IngestRecord) error {
	query := `
		INSERT INTO ingest_records (id, source, mime_type, size_bytes, chunk_count, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			chunk_count = EXCLUDED.chunk_count,
			ingested_at = EXCLUDED.ingested_at
	`

	_, err := l.db.ExecContext(ctx, query,
		rec.ID,
		rec.Source,
		rec.MimeType,
		rec.SizeBytes,
		rec.ChunkCount,
		rec.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("saving ingest record: %w", err)
	}
	return nil
}

// List retrieves records ordered by ingest time, newest first
func (l *IngestLog) List(ctx context.Context, limit, offset int) ([]*domain.IngestRecord, error) {
	query := `
		SELECT id, source, mime_type, size_bytes, chunk_count, ingested_at
		FROM ingest_records
		ORDER BY ingested_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := l.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing ingest records: %w", err)
	}
	defer rows.Close()

	var records []*domain.IngestRecord
	for rows.Next() {
		rec := &domain.IngestRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.Source,
			&rec.MimeType,
			&rec.SizeBytes,
			&rec.ChunkCount,
			&rec.IngestedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ingest record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of records
func (l *IngestLog) Count(ctx context.Context) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingest_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting ingest records: %w", err)
	}
	return count, nil
}
