package embedding

import (
	"context"

	"go.uber.org/zap"
)

// Strategy names reported by a Provider.
const (
	StrategyONNX     = "onnx"
	StrategyOpenAI   = "openai"
	StrategyFallback = "fallback"
)

// Options selects and configures the embedding strategy.
type Options struct {
	// Provider is the requested strategy: "onnx", "openai", or "fallback".
	// Unknown or empty values select the fallback.
	Provider   string
	ModelPath  string // ONNX model file
	Model      string // OpenAI model name
	APIKey     string // OpenAI API key
	Dimensions int
	MaxTokens  int
	CacheSize  int
}

// Provider wraps a single embedding strategy selected at construction. The
// choice never changes for the provider's lifetime: when the requested
// model-backed strategy cannot be acquired, the provider silently degrades to
// the deterministic fallback and records a diagnostic instead of failing.
type Provider struct {
	embedder Embedder
	strategy string
	degraded bool
	diag     string
}

// New builds a provider for the requested strategy. Model acquisition
// failures are never fatal; they are reported through Degraded and
// Diagnostic, and logged as a warning when a logger is given.
func New(opts Options, logger *zap.Logger) *Provider {
	p := &Provider{}
	switch opts.Provider {
	case StrategyONNX:
		emb, err := NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens, opts.CacheSize, logger)
		if err != nil {
			p.degrade(StrategyONNX, err.Error(), opts.Dimensions, logger)
			return p
		}
		p.embedder = emb
		p.strategy = StrategyONNX
	case StrategyOpenAI:
		emb, err := NewOpenAIEmbedder(opts.Model, opts.APIKey, opts.CacheSize)
		if err != nil {
			p.degrade(StrategyOpenAI, err.Error(), opts.Dimensions, logger)
			return p
		}
		p.embedder = emb
		p.strategy = StrategyOpenAI
	default:
		p.embedder = NewFallbackEmbedder(opts.Dimensions)
		p.strategy = StrategyFallback
	}
	return p
}

func (p *Provider) degrade(requested, reason string, dimensions int, logger *zap.Logger) {
	p.embedder = NewFallbackEmbedder(dimensions)
	p.strategy = StrategyFallback
	p.degraded = true
	p.diag = requested + " embedder unavailable: " + reason
	if logger != nil {
		logger.Warn("embedding strategy degraded to deterministic fallback",
			zap.String("requested", requested),
			zap.String("reason", reason),
		)
	}
}

// Embed embeds a single text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.embedder.Embed(ctx, text)
}

// EmbedBatch embeds texts in order; row i of the result corresponds to
// texts[i].
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return p.embedder.EmbedBatch(ctx, texts)
}

// Dimensions returns the fixed output dimension of the active strategy.
func (p *Provider) Dimensions() int {
	return p.embedder.Dimensions()
}

// Strategy returns the name of the active strategy.
func (p *Provider) Strategy() string {
	return p.strategy
}

// Degraded reports whether the requested model-backed strategy was
// unavailable and the fallback took its place.
func (p *Provider) Degraded() bool {
	return p.degraded
}

// Diagnostic returns the reason for degradation, or "" when not degraded.
func (p *Provider) Diagnostic() string {
	return p.diag
}

// Close releases resources held by the active embedder.
func (p *Provider) Close() error {
	return p.embedder.Close()
}
