// Package pdf extracts text and page images from PDF bytes using the
// poppler command-line tools (pdftotext, pdftoppm).
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// ErrPDFToolNotFound indicates the poppler tools are not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Verify interface compliance
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor implements TextExtractor by running pdftotext over a scratch
// file holding the input bytes.
type Extractor struct {
	runner driven.CommandRunner
}

// New creates an Extractor using the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an Extractor with an injected runner for testing.
func NewWithRunner(runner driven.CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract returns the text layer of the PDF. Scanned documents may
// legitimately yield empty text; that is the caller's trigger condition for
// the OCR path, not an error here.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	scratch, cleanup, err := writeScratch(content)
	if err != nil {
		return "", err
	}
	defer cleanup()

	// "-" writes the text to stdout
	out, err := e.runner.Run(ctx, "pdftotext", "-q", scratch, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns human-readable install guidance.
func InstallInstructions() string {
	return "PDF support requires the poppler tools (pdftotext, pdftoppm).\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils\n" +
		"  Fedora: dnf install poppler-utils"
}

// execRunner runs real commands.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// writeScratch stores content in a temp file and returns its path plus an
// unconditional cleanup func. Every exit path of the callers runs cleanup,
// success or failure.
func writeScratch(content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "ragpipe-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing scratch file: %w", err)
	}
	return path, cleanup, nil
}
