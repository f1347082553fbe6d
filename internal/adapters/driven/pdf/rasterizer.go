package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// renderDPI gives roughly 1.5x scale over the default 72 DPI, enough
// resolution for vision models to read body text without oversized payloads.
const renderDPI = 108

// Verify interface compliance
var _ driven.PageRasterizer = (*Rasterizer)(nil)

// Rasterizer implements PageRasterizer by running pdftoppm over a scratch
// file, one JPEG per page.
type Rasterizer struct {
	runner driven.CommandRunner
}

// NewRasterizer creates a Rasterizer using the real pdftoppm binary.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{runner: execRunner{}}
}

// NewRasterizerWithRunner creates a Rasterizer with an injected runner for
// testing.
func NewRasterizerWithRunner(runner driven.CommandRunner) *Rasterizer {
	return &Rasterizer{runner: runner}
}

// Render converts each page of the PDF to a JPEG image, in page order.
func (r *Rasterizer) Render(ctx context.Context, content []byte) ([][]byte, error) {
	scratch, cleanup, err := writeScratch(content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	dir, err := os.MkdirTemp("", "ragpipe-pages-")
	if err != nil {
		return nil, fmt.Errorf("creating page directory: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	_, err = r.runner.Run(ctx, "pdftoppm",
		"-jpeg",
		"-r", fmt.Sprintf("%d", renderDPI),
		scratch, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w", err)
	}

	return collectPages(dir)
}

// collectPages reads the rendered JPEGs back in page order. pdftoppm
// zero-pads page numbers in its output names, so lexical order is page
// order.
func collectPages(dir string) ([][]byte, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("listing rendered pages: %w", err)
	}
	sort.Strings(matches)

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page: %w", err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}
