// Package embedding converts text into fixed-dimension, L2-normalized
// vectors. A provider picks its strategy once at construction: a model-backed
// embedder (local ONNX model or the OpenAI API) when available, or a
// deterministic hash-seeded fallback otherwise.
package embedding

import "context"

// DefaultDimensions is the fallback vector dimension, matching the MiniLM
// family of sentence-embedding models.
const DefaultDimensions = 384

// Embedder produces vector embeddings for text. All implementations return
// unit-length vectors so inner-product and cosine rankings coincide.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
