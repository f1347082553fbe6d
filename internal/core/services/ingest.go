package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragpipe/internal/chunker"
	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driving"
	"github.com/custodia-labs/ragpipe/internal/vectorstore"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

// ingestService implements the IngestService interface.
// It selects an extraction strategy from the content type, chunks the
// extracted text and writes the chunks to the vector store.
type ingestService struct {
	store     *vectorstore.Store
	extractor driven.TextExtractor
	ocr       *OCRPipeline
	ingestLog driven.IngestLog // optional, may be nil
	chunkCfg  chunker.Config
	logger    *slog.Logger
}

// NewIngestService creates a new IngestService.
// ingestLog may be nil; provenance logging is then skipped.
func NewIngestService(
	store *vectorstore.Store,
	extractor driven.TextExtractor,
	ocr *OCRPipeline,
	ingestLog driven.IngestLog,
	chunkCfg chunker.Config,
	logger *slog.Logger,
) driving.IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		store:     store,
		extractor: extractor,
		ocr:       ocr,
		ingestLog: ingestLog,
		chunkCfg:  chunkCfg,
		logger:    logger,
	}
}

// IngestText chunks raw text and writes it to the vector store.
func (s *ingestService) IngestText(ctx context.Context, text string, metadata map[string]any) (*domain.IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	chunks, err := chunker.Split(text, metadata, s.chunkCfg)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		return nil, err
	}

	s.record(ctx, metadata, "text/plain", int64(len(text)), len(chunks))

	s.logger.Info("text ingested", "chunks", len(chunks), "chars", len(text))
	return &domain.IngestResult{Success: true, Chunks: len(chunks)}, nil
}

// IngestFile extracts text from file bytes, then ingests it.
// The extraction strategy is fixed by the content type and the OCR flag;
// an empty extraction fails rather than silently trying another strategy.
func (s *ingestService) IngestFile(ctx context.Context, input *domain.FileInput) (*domain.IngestResult, error) {
	if input == nil || len(input.Content) == 0 {
		return nil, fmt.Errorf("%w: file content is required", domain.ErrInvalidInput)
	}

	text, err := s.extract(ctx, input)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrExtractionEmpty
	}

	chunks, err := chunker.Split(text, input.Metadata, s.chunkCfg)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		return nil, err
	}

	s.record(ctx, input.Metadata, input.MimeType, int64(len(input.Content)), len(chunks))

	s.logger.Info("file ingested",
		"mimetype", input.MimeType,
		"ocr", input.UseOCR,
		"chunks", len(chunks),
	)
	return &domain.IngestResult{Success: true, Chunks: len(chunks)}, nil
}

func (s *ingestService) extract(ctx context.Context, input *domain.FileInput) (string, error) {
	switch {
	case input.UseOCR && input.MimeType == "application/pdf":
		return s.ocr.Transcribe(ctx, input.Content)
	case input.MimeType == "application/pdf":
		return s.extractor.Extract(ctx, input.Content)
	default:
		// Plain-text passthrough
		return string(input.Content), nil
	}
}

// record stores ingest provenance. Failures are logged, never surfaced:
// the chunks are already in the index.
func (s *ingestService) record(ctx context.Context, metadata map[string]any, mimeType string, size int64, chunks int) {
	if s.ingestLog == nil {
		return
	}

	source := ""
	if metadata != nil {
		if v, ok := metadata["source"].(string); ok {
			source = v
		}
	}

	rec := &domain.IngestRecord{
		ID:         uuid.NewString(),
		Source:     source,
		MimeType:   mimeType,
		SizeBytes:  size,
		ChunkCount: chunks,
		IngestedAt: time.Now().UTC(),
	}
	if err := s.ingestLog.Save(ctx, rec); err != nil {
		s.logger.Warn("failed to record ingest", "error", err, "source", source)
	}
}
