package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/ragpipe/internal/chunker"
	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driving"
	"github.com/custodia-labs/ragpipe/internal/vectorstore"
)

type ingestFixture struct {
	svc       driving.IngestService
	index     *mocks.MockVectorIndex
	extractor *mocks.MockTextExtractor
	vision    *mocks.MockVisionService
	log       *mocks.MockIngestLog
}

func newIngestFixture(extractedText string) *ingestFixture {
	index := mocks.NewMockVectorIndex()
	store := vectorstore.New(mocks.NewMockEmbeddingService(), index, "rag-collection")
	extractor := mocks.NewMockTextExtractor(extractedText)
	vision := mocks.NewMockVisionService("scanned page text")
	ocr := NewOCRPipeline(mocks.NewMockPageRasterizer(1), vision, nil)
	log := mocks.NewMockIngestLog()

	return &ingestFixture{
		svc:       NewIngestService(store, extractor, ocr, log, chunker.DefaultConfig(), nil),
		index:     index,
		extractor: extractor,
		vision:    vision,
		log:       log,
	}
}

func TestIngestText_Success(t *testing.T) {
	f := newIngestFixture("")

	result, err := f.svc.IngestText(context.Background(), strings.Repeat("n", 2400), map[string]any{"source": "notes.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if result.Chunks != 3 {
		t.Errorf("expected 3 chunks for a 2400-char document, got %d", result.Chunks)
	}
	if f.index.Len() != 3 {
		t.Errorf("expected 3 points in the index, got %d", f.index.Len())
	}
}

func TestIngestText_Empty(t *testing.T) {
	f := newIngestFixture("")

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := f.svc.IngestText(context.Background(), text, nil)
		if !errors.Is(err, domain.ErrEmptyInput) {
			t.Errorf("text %q: expected ErrEmptyInput, got %v", text, err)
		}
	}
	if f.index.Len() != 0 {
		t.Error("empty text must not reach the store")
	}
}

func TestIngestText_RecordsProvenance(t *testing.T) {
	f := newIngestFixture("")

	_, err := f.svc.IngestText(context.Background(), "some text to ingest", map[string]any{"source": "memo.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.log.Records) != 1 {
		t.Fatalf("expected 1 ingest record, got %d", len(f.log.Records))
	}
	rec := f.log.Records[0]
	if rec.Source != "memo.txt" {
		t.Errorf("expected source memo.txt, got %q", rec.Source)
	}
	if rec.ChunkCount != 1 {
		t.Errorf("expected chunk count 1, got %d", rec.ChunkCount)
	}
}

func TestIngestText_LogFailureIsNotFatal(t *testing.T) {
	f := newIngestFixture("")
	f.log.Err = errors.New("database down")

	result, err := f.svc.IngestText(context.Background(), "still works", nil)
	if err != nil {
		t.Fatalf("expected ingest to succeed despite log failure, got %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
}

func TestIngestFile_PlainText(t *testing.T) {
	f := newIngestFixture("")

	result, err := f.svc.IngestFile(context.Background(), &domain.FileInput{
		Content:  []byte("plain text file content"),
		MimeType: "text/plain",
		Metadata: map[string]any{"source": "readme.txt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Chunks != 1 {
		t.Errorf("expected 1 chunk, got %d", result.Chunks)
	}
	if f.extractor.Calls != 0 {
		t.Error("plain text must not go through the PDF extractor")
	}
}

func TestIngestFile_PDFTextLayer(t *testing.T) {
	f := newIngestFixture("text extracted from the pdf layer")

	result, err := f.svc.IngestFile(context.Background(), &domain.FileInput{
		Content:  []byte("%PDF-1.4 fake"),
		MimeType: "application/pdf",
		Metadata: map[string]any{"source": "report.pdf"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Chunks != 1 {
		t.Errorf("expected 1 chunk, got %d", result.Chunks)
	}
	if f.extractor.Calls != 1 {
		t.Errorf("expected 1 extractor call, got %d", f.extractor.Calls)
	}
}

func TestIngestFile_OCRPath(t *testing.T) {
	f := newIngestFixture("")

	result, err := f.svc.IngestFile(context.Background(), &domain.FileInput{
		Content:  []byte("%PDF-1.4 scanned"),
		MimeType: "application/pdf",
		Metadata: map[string]any{"source": "scan.pdf"},
		UseOCR:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Chunks != 1 {
		t.Errorf("expected 1 chunk, got %d", result.Chunks)
	}
	if f.extractor.Calls != 0 {
		t.Error("OCR path must not call the text-layer extractor")
	}
}

func TestIngestFile_EmptyExtraction(t *testing.T) {
	// A scanned PDF with no text layer extracts to whitespace; the
	// orchestrator must fail rather than silently fall back to OCR.
	f := newIngestFixture("  \n  ")

	_, err := f.svc.IngestFile(context.Background(), &domain.FileInput{
		Content:  []byte("%PDF-1.4 scanned"),
		MimeType: "application/pdf",
	})
	if !errors.Is(err, domain.ErrExtractionEmpty) {
		t.Errorf("expected ErrExtractionEmpty, got %v", err)
	}
	if f.index.Len() != 0 {
		t.Error("empty extraction must not write to the store")
	}
	if len(f.log.Records) != 0 {
		t.Error("failed ingest must not be recorded")
	}
}

func TestIngestFile_NoContent(t *testing.T) {
	f := newIngestFixture("")

	_, err := f.svc.IngestFile(context.Background(), &domain.FileInput{MimeType: "text/plain"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestFile_StoreWriteFailure(t *testing.T) {
	f := newIngestFixture("")
	f.index.UpsertErr = errors.New("connection reset")

	_, err := f.svc.IngestFile(context.Background(), &domain.FileInput{
		Content:  []byte("content"),
		MimeType: "text/plain",
	})
	if !errors.Is(err, domain.ErrStoreWrite) {
		t.Errorf("expected ErrStoreWrite, got %v", err)
	}
	if len(f.log.Records) != 0 {
		t.Error("failed ingest must not be recorded")
	}
}

func TestIngestService_NilLogIsOptional(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	store := vectorstore.New(mocks.NewMockEmbeddingService(), index, "rag-collection")
	ocr := NewOCRPipeline(mocks.NewMockPageRasterizer(1), mocks.NewMockVisionService("p"), nil)
	svc := NewIngestService(store, mocks.NewMockTextExtractor(""), ocr, nil, chunker.DefaultConfig(), nil)

	if _, err := svc.IngestText(context.Background(), "no registry configured", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
