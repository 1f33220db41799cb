// Package splitter turns raw document text into overlapping fixed-size
// chunks.
package splitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/hikidasu/internal/models"
)

// ErrChunkConfig is returned when the chunk size or overlap parameters are
// invalid.
var ErrChunkConfig = errors.New("splitter: invalid chunk configuration")

// Split slides a window of chunkSize runes over the document text, advancing
// the window start by chunkSize-chunkOverlap each step. A window is emitted
// only when it is non-blank after trimming; the emitted chunk keeps the full
// window text. The result is deterministic and preserves document order.
//
// Returns ErrChunkConfig when chunkSize <= 0, chunkOverlap < 0, or
// chunkOverlap >= chunkSize.
func Split(doc models.Document, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrChunkConfig, chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrChunkConfig, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrChunkConfig, chunkOverlap, chunkSize)
	}

	text := []rune(doc.Text)
	step := chunkSize - chunkOverlap
	var chunks []models.Chunk
	for start := 0; start < len(text); start += step {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		window := string(text[start:end])
		if strings.TrimSpace(window) == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{Source: doc.Path, Content: window})
	}
	return chunks, nil
}

// SplitAll splits every document and concatenates the chunks in document
// order.
func SplitAll(docs []models.Document, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	var all []models.Chunk
	for _, doc := range docs {
		chunks, err := Split(doc, chunkSize, chunkOverlap)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}
