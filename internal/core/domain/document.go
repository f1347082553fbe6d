package domain

import "time"

// Chunk is a bounded contiguous slice of a source document's text plus the
// document-level metadata shared by every chunk of that document.
type Chunk struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Position int            `json:"position"` // Chunk position within document (0-based)
}

// FileInput is the transient input to a file ingestion call.
type FileInput struct {
	Content  []byte         `json:"-"`
	MimeType string         `json:"mimetype"`
	Metadata map[string]any `json:"metadata"`
	UseOCR   bool           `json:"use_ocr"`
}

// RetrievedChunk is one nearest-neighbor search hit. Rank 0 is the most
// relevant result; rank order is preserved through context assembly.
type RetrievedChunk struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Rank     int            `json:"rank"`
	Score    float64        `json:"score"`
}

// IngestResult reports the outcome of one ingestion call.
type IngestResult struct {
	Success bool `json:"success"`
	Chunks  int  `json:"chunks"`
}

// QueryResult pairs an answer with the provenance of every retrieved chunk,
// in retrieval rank order.
type QueryResult struct {
	Answer  string           `json:"answer"`
	Sources []map[string]any `json:"sources"`
}

// IngestRecord is one row of the optional ingest provenance log.
type IngestRecord struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}
