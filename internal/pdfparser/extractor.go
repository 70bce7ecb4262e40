// Package pdfparser routes PDF statement bytes through a text-extraction
// collaborator and parses the extracted text into canonical transactions.
package pdfparser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Extractor is the text-extraction collaborator. The production
// implementation shells out to pdftotext; tests inject a mock.
type Extractor interface {
	// ExtractText returns the plain-text rendition of a PDF document.
	ExtractText(data []byte) (string, error)
}

// PdftotextExtractor implements Extractor using the pdftotext command.
type PdftotextExtractor struct {
	// BinaryPath overrides the pdftotext binary; empty means "pdftotext"
	// from PATH.
	BinaryPath string
}

func NewPdftotextExtractor(binaryPath string) *PdftotextExtractor {
	return &PdftotextExtractor{BinaryPath: binaryPath}
}

// ExtractText writes the PDF to a temp file and runs pdftotext -layout over
// it. Layout mode preserves the column alignment statement tables rely on.
func (e *PdftotextExtractor) ExtractText(data []byte) (string, error) {
	bin := e.BinaryPath
	if bin == "" {
		bin = "pdftotext"
	}

	dir, err := os.MkdirTemp("", "finledger-pdf-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	pdfPath := filepath.Join(dir, "statement.pdf")
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return "", fmt.Errorf("writing temp PDF: %w", err)
	}

	out, err := exec.Command(bin, "-layout", pdfPath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

// MockExtractor implements Extractor for tests.
type MockExtractor struct {
	Text string
	Err  error
}

func (e *MockExtractor) ExtractText(data []byte) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}
