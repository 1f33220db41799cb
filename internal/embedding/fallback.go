package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"github.com/hyperjump/hikidasu/pkg/utils"
)

// FallbackEmbedder produces deterministic pseudo-random vectors when no model
// is available. The 32-bit seed is derived from a SHA-256 hash of the text,
// so identical text yields a bit-identical vector across calls and across
// process restarts.
type FallbackEmbedder struct {
	dimensions int
}

// NewFallbackEmbedder returns a fallback embedder of the given dimension
// (DefaultDimensions when non-positive).
func NewFallbackEmbedder(dimensions int) *FallbackEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &FallbackEmbedder{dimensions: dimensions}
}

// Embed returns the hash-seeded unit vector for text.
func (e *FallbackEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	seed := binary.BigEndian.Uint32(sum[:4])
	// The classic math/rand source is covered by the Go 1 compatibility
	// promise, which keeps the sequence stable across releases.
	rng := rand.New(rand.NewSource(int64(seed)))
	vec := make([]float32, e.dimensions)
	for i := range vec {
		vec[i] = float32(rng.Float64())
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (e *FallbackEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the embedding dimension.
func (e *FallbackEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *FallbackEmbedder) Close() error {
	return nil
}
