// Package models defines the data types shared across the ingest and
// retrieval pipelines.
package models

// Document is a raw source document as produced by the loader, before
// splitting.
type Document struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// Chunk is a contiguous (possibly overlapping) window of a source document.
// It doubles as the metadata record persisted next to each vector: position i
// in the metadata sidecar corresponds to vector row i, and that position is
// the only identity a record has.
type Chunk struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}
