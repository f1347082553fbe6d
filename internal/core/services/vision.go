package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// transcribeInstruction is sent with every page image.
const transcribeInstruction = "Transcribe the text in this image verbatim. Do not add any commentary. " +
	"If there are tables or charts, summarize them in text."

// OCRPipeline transcribes scanned or image-only PDFs: render each page to a
// raster image, ask a vision model to transcribe it, and assemble the
// per-page transcriptions with page markers.
type OCRPipeline struct {
	rasterizer driven.PageRasterizer
	vision     driven.VisionService
	logger     *slog.Logger
}

// NewOCRPipeline creates a new OCRPipeline.
func NewOCRPipeline(rasterizer driven.PageRasterizer, vision driven.VisionService, logger *slog.Logger) *OCRPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRPipeline{
		rasterizer: rasterizer,
		vision:     vision,
		logger:     logger,
	}
}

// Transcribe renders pdfBytes to page images and transcribes them in page
// order. Pages are processed strictly sequentially to respect the vision
// provider's rate limit. A failed page fails the whole document; partial
// transcriptions are discarded.
func (p *OCRPipeline) Transcribe(ctx context.Context, pdfBytes []byte) (string, error) {
	images, err := p.rasterizer.Render(ctx, pdfBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRender, err)
	}
	p.logger.Info("rendered pdf pages", "pages", len(images))

	var sb strings.Builder
	for i, image := range images {
		pageText, err := p.vision.Transcribe(ctx, transcribeInstruction, image)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrTranscription, i+1, err)
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n\n", i+1, pageText)
	}

	return sb.String(), nil
}
