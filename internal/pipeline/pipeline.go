// Package pipeline wires loading, chunking, embedding and the vector index
// into the two end-to-end flows: ingest and retrieve.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/hikidasu/internal/embedding"
	"github.com/hyperjump/hikidasu/internal/loader"
	"github.com/hyperjump/hikidasu/internal/splitter"
	"github.com/hyperjump/hikidasu/internal/vector"
)

// Pipeline runs document ingestion and retrieval against an index directory.
type Pipeline struct {
	loader       *loader.Loader
	provider     *embedding.Provider
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

// New creates a Pipeline. logger may be nil.
func New(ld *loader.Loader, provider *embedding.Provider, chunkSize, chunkOverlap int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		loader:       ld,
		provider:     provider,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Ingest loads every supported document under sourceDir, chunks and embeds
// the text, and writes a fresh index into indexDir, replacing whatever was
// there. When sourceDir yields no documents the call logs a warning and
// returns nil without touching indexDir.
func (p *Pipeline) Ingest(ctx context.Context, sourceDir, indexDir string) error {
	docs, err := p.loader.Load(sourceDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		if p.logger != nil {
			p.logger.Warn("no documents found, nothing to ingest", zap.String("source_dir", sourceDir))
		}
		return nil
	}

	chunks, err := splitter.SplitAll(docs, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		if p.logger != nil {
			p.logger.Warn("documents produced no chunks, nothing to ingest", zap.String("source_dir", sourceDir))
		}
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	vectors, err := p.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("pipeline: embed chunks: %w", err)
	}

	index, err := vector.New(len(vectors[0]), vector.WithLogger(p.logger))
	if err != nil {
		return err
	}
	if err := index.Add(vectors, chunks); err != nil {
		return err
	}
	if err := index.Save(indexDir); err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Info("ingest complete",
			zap.Int("documents", len(docs)),
			zap.Int("chunks", len(chunks)),
			zap.String("index_dir", indexDir),
		)
	}
	return nil
}

// Retrieve embeds the query, loads the index from indexDir and returns up to
// topK context strings ordered by descending similarity. A chunk with empty
// content falls back to a "source: <path>" label so a hit always yields a
// usable reference. A missing or empty index returns no contexts and no
// error.
func (p *Pipeline) Retrieve(ctx context.Context, query, indexDir string, topK int) ([]string, error) {
	vec, err := p.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pipeline: embed query: %w", err)
	}

	index, err := vector.New(len(vec), vector.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	if err := index.Load(indexDir); err != nil {
		return nil, err
	}

	hits, err := index.Search(vec, topK)
	if err != nil {
		return nil, err
	}
	contexts := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Meta.Content != "" {
			contexts = append(contexts, hit.Meta.Content)
		} else {
			contexts = append(contexts, "source: "+hit.Meta.Source)
		}
	}
	if p.logger != nil {
		p.logger.Debug("retrieval complete",
			zap.Int("hits", len(contexts)),
			zap.Int("top_k", topK),
		)
	}
	return contexts, nil
}
