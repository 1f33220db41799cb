package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/hikidasu/pkg/utils"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIEmbedder delegates embedding to the OpenAI API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	cache  *Cache

	mu sync.Mutex
	// dimensions starts from the known-model table (0 for unrecognized
	// models) and is pinned by the first response; later responses must
	// match.
	dimensions int
}

// modelDimensions returns the native output width of known embedding models,
// or 0 when the model is not recognized.
func modelDimensions(model string) int {
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	}
	return 0
}

// NewOpenAIEmbedder creates an embedder for the given model. The API key must
// be non-empty; without one, construction fails and the provider degrades to
// the fallback strategy. For models not in the known table, the dimension is
// learned from the first response.
func NewOpenAIEmbedder(model, apiKey string, cacheSize int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: modelDimensions(model),
		cache:      NewCache(cacheSize),
	}, nil
}

// adoptDimensions pins the embedding width to n, or fails when n disagrees
// with an already-pinned width. Catching the mismatch here surfaces a wrong
// model assumption on the first response instead of much later at index time.
func (e *OpenAIEmbedder) adoptDimensions(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimensions == 0 {
		e.dimensions = n
		return nil
	}
	if n != e.dimensions {
		return fmt.Errorf("model %s returned %d dimensions, expected %d", e.model, n, e.dimensions)
	}
	return nil
}

// Embed requests a single embedding and normalizes it.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embeddings request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("OpenAI embeddings response contained no data")
	}
	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i := range raw {
		vec[i] = float32(raw[i])
	}
	if err := e.adoptDimensions(len(vec)); err != nil {
		return nil, err
	}
	utils.NormalizeL2(vec)
	e.cache.Put(text, vec)
	return vec, nil
}

// EmbedBatch embeds each text in order, consulting the cache per text.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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

// Dimensions returns the embedding dimension: the known width for the
// configured model, or 0 until the first response pins it for an
// unrecognized model.
func (e *OpenAIEmbedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimensions
}

// Close is a no-op.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
