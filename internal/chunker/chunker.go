package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
)

// Config configures the chunker behavior.
type Config struct {
	// ChunkSize is the maximum characters per chunk
	ChunkSize int

	// Overlap is the character overlap between consecutive chunks
	Overlap int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// breakWindow is how far below the size limit Split searches for a
// paragraph, sentence or word boundary before falling back to a hard cut.
const breakWindow = 100

// Split partitions text into overlapping chunks of at most cfg.ChunkSize
// characters, preferring to break at paragraph, sentence or word boundaries.
// Every chunk shares the caller-supplied metadata. The output is
// deterministic for identical input.
func Split(text string, metadata map[string]any, cfg Config) ([]domain.Chunk, error) {
	if cfg.ChunkSize <= 0 || cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("%w: chunk_size=%d overlap=%d", domain.ErrInvalidParams, cfg.ChunkSize, cfg.Overlap)
	}
	if text == "" {
		return nil, domain.ErrEmptyInput
	}

	if len(text) <= cfg.ChunkSize {
		return []domain.Chunk{{Text: text, Metadata: metadata, Position: 0}}, nil
	}

	var chunks []domain.Chunk
	start := 0
	position := 0

	for start < len(text) {
		end := start + cfg.ChunkSize
		if end > len(text) {
			end = len(text)
		}

		// Snap to a natural boundary unless this is the final chunk
		if end < len(text) {
			if bp := findBreakPoint(text, start, end); bp > start {
				end = bp
			}
			// Never cut inside a multi-byte rune
			for end > start+1 && !utf8.RuneStart(text[end]) {
				end--
			}
		}

		chunks = append(chunks, domain.Chunk{
			Text:     text[start:end],
			Metadata: metadata,
			Position: position,
		})
		position++

		if end >= len(text) {
			break
		}

		// Move start with overlap, ensuring we always advance
		nextStart := end - cfg.Overlap
		if nextStart <= start {
			nextStart = start + 1
		}
		for nextStart < len(text) && !utf8.RuneStart(text[nextStart]) {
			nextStart++
		}
		start = nextStart
	}

	return chunks, nil
}

// findBreakPoint finds a good break point for chunking.
func findBreakPoint(text string, start, maxEnd int) int {
	searchStart := maxEnd - breakWindow
	if searchStart < start {
		searchStart = start
	}

	window := text[searchStart:maxEnd]

	// Paragraph boundary (double newline)
	if idx := strings.LastIndex(window, "\n\n"); idx != -1 {
		return searchStart + idx + 2
	}

	// Sentence boundary
	sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
	bestIdx := -1
	for _, ender := range sentenceEnders {
		if idx := strings.LastIndex(window, ender); idx != -1 {
			endPos := idx + len(ender)
			if endPos > bestIdx {
				bestIdx = endPos
			}
		}
	}
	if bestIdx > 0 {
		return searchStart + bestIdx
	}

	// Word boundary
	if idx := strings.LastIndex(window, " "); idx != -1 {
		return searchStart + idx + 1
	}

	// No good break point found, hard cut
	return maxEnd
}
