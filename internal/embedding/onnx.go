//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/hyperjump/hikidasu/pkg/utils"
)

// ONNXEmbedder runs a local sentence-embedding model through ONNX Runtime.
// Requires CGO and the onnxruntime shared library at runtime.
type ONNXEmbedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  wordTokenizer
	dimensions int
	maxTokens  int
	cache      *Cache
	mu         sync.Mutex
}

// NewONNXEmbedder loads the model at modelPath. The ONNX environment is
// initialized on first use.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens, cacheSize int, logger *zap.Logger) (*ONNXEmbedder, error) {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize ONNX runtime: %w", err)
		}
	}
	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create ONNX session: %w", err)
	}
	if logger != nil {
		logger.Info("ONNX embedding model loaded",
			zap.String("model_path", modelPath),
			zap.Int("dimensions", dimensions),
		)
	}
	return &ONNXEmbedder{
		session:    session,
		dimensions: dimensions,
		maxTokens:  maxTokens,
		cache:      NewCache(cacheSize),
	}, nil
}

// Embed returns the normalized model embedding for text, using the cache when
// possible. Inference is serialized; the session is not safe for concurrent
// Run calls with shared tensors.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, types := e.tokenizer.tokenize(text, e.maxTokens)
	shape := ort.NewShape(1, int64(e.maxTokens))
	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typesTensor, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	defer typesTensor.Destroy()
	outTensor, err := ort.NewTensor(ort.NewShape(1, int64(e.dimensions)), make([]float32, e.dimensions))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer outTensor.Destroy()

	inputs := []ort.ArbitraryTensor{idsTensor, maskTensor, typesTensor}
	outputs := []ort.ArbitraryTensor{outTensor}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("ONNX inference: %w", err)
	}

	vec := make([]float32, e.dimensions)
	copy(vec, outTensor.GetData())
	utils.NormalizeL2(vec)
	e.cache.Put(text, vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}
