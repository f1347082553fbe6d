package driving

import (
	"context"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
)

// IngestService handles document ingestion into the vector store
type IngestService interface {
	// IngestText chunks raw text and writes it to the vector store
	IngestText(ctx context.Context, text string, metadata map[string]any) (*domain.IngestResult, error)

	// IngestFile extracts text from file bytes (plain text, PDF text layer,
	// or OCR when requested), then ingests it
	IngestFile(ctx context.Context, input *domain.FileInput) (*domain.IngestResult, error)
}
