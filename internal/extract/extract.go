// Package extract turns document files into plain text for chunking.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor converts supported document formats to plain text.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. Plain text
// formats (.txt, .md, .rst) pass through with UTF-8 validation; PDF, DOCX and
// XLSX are decoded from their binary containers.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on ext, which includes the
// leading dot (e.g. ".pdf"). Unrecognized extensions are treated as plain
// text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	default:
		return extractPlain(content)
	}
}
