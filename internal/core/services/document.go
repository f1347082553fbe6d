package services

import (
	"context"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService exposes the ingest provenance log.
type documentService struct {
	ingestLog driven.IngestLog
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(ingestLog driven.IngestLog) driving.DocumentService {
	return &documentService{ingestLog: ingestLog}
}

// List retrieves ingest records, newest first.
func (s *documentService) List(ctx context.Context, limit, offset int) ([]*domain.IngestRecord, error) {
	if s.ingestLog == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.ingestLog.List(ctx, limit, offset)
}

// Count returns the total number of ingest records.
func (s *documentService) Count(ctx context.Context) (int, error) {
	if s.ingestLog == nil {
		return 0, nil
	}
	return s.ingestLog.Count(ctx)
}
