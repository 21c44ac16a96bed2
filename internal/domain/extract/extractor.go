// Package extract converts purchase-order PDFs into layout-preserving plain
// text. The production implementation shells out to poppler's pdftotext; the
// PDF is validated with pdfcpu first so corrupt or encrypted files fail fast
// with a single extraction error instead of garbage text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrNotPDF indicates the uploaded bytes are not a PDF document.
	ErrNotPDF = errors.New("not a PDF document")

	// ErrNoText indicates extraction succeeded but produced no text,
	// typically a scanned (image-only) PDF.
	ErrNoText = errors.New("no text content in PDF")
)

// ExtractionError is the fatal error class for an export: the external
// text-extraction step could not produce usable text.
type ExtractionError struct {
	Stage string // "validate" or "pdftotext"
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed at %s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor converts a PDF byte stream into layout-preserving plain text.
type Extractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// PdftotextExtractor runs the pdftotext binary with -layout so column
// alignment survives, which the vendor line parsers depend on.
type PdftotextExtractor struct {
	binPath string
	timeout time.Duration
}

// NewPdftotextExtractor creates an extractor using the given pdftotext binary.
func NewPdftotextExtractor(binPath string, timeout time.Duration) *PdftotextExtractor {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PdftotextExtractor{binPath: binPath, timeout: timeout}
}

// Available reports whether the pdftotext binary can be found. Used by the
// health endpoint and the CLI preflight.
func (e *PdftotextExtractor) Available() bool {
	_, err := exec.LookPath(e.binPath)
	return err == nil
}

// ExtractText validates the PDF and converts it to text. Any failure is an
// ExtractionError: fatal for the current export, no partial output.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	if err := validatePDF(pdf); err != nil {
		return "", &ExtractionError{Stage: "validate", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// pdftotext cannot seek stdin for all PDF flavors, so write to a
	// temp file and read the converted text from stdout.
	tmp, err := os.CreateTemp("", "po-*.pdf")
	if err != nil {
		return "", &ExtractionError{Stage: "pdftotext", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", &ExtractionError{Stage: "pdftotext", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &ExtractionError{Stage: "pdftotext", Err: err}
	}

	cmd := exec.CommandContext(ctx, e.binPath, "-layout", filepath.Clean(tmpPath), "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ExtractionError{
			Stage: "pdftotext",
			Err:   fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(stderr.String())),
		}
	}

	text := stdout.String()
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Stage: "pdftotext", Err: ErrNoText}
	}

	return text, nil
}

// validatePDF runs a pdfcpu relaxed validation over the raw bytes.
func validatePDF(pdf []byte) error {
	if len(pdf) < 5 || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		return ErrNotPDF
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(pdf), conf); err != nil {
		return fmt.Errorf("pdfcpu validate: %w", err)
	}
	return nil
}

// MockExtractor returns predefined text instead of invoking pdftotext.
// Used by tests and the e2e suite.
type MockExtractor struct {
	Text string
	Err  error
}

// ExtractText returns the predefined mock text or error.
func (m *MockExtractor) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}
