package driven

import (
	"context"
)

// TextExtractor extracts the text layer from document bytes.
// Best-effort: scanned PDFs may legitimately yield empty text.
type TextExtractor interface {
	// Extract returns the text content of the document
	Extract(ctx context.Context, content []byte) (string, error)
}

// PageRasterizer renders document pages to raster images.
type PageRasterizer interface {
	// Render returns one JPEG-encoded image per page, in page order
	Render(ctx context.Context, content []byte) ([][]byte, error)
}

// CommandRunner executes an external tool and returns its combined output.
// It exists as a seam so adapters shelling out to poppler can be tested
// without the tools installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
