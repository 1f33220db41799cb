// Package vector provides the embedding index: ownership of vectors and
// their metadata, persistence to a directory, and exact top-k similarity
// search.
//
// A backend is chosen once at construction and never changes for the
// instance's lifetime: the flat backend (SIMD-accelerated exact inner
// product) when its self-check passes, or the naive backend (pure-Go float64
// brute force) otherwise. Save and Load are plain overwrites, not atomic;
// callers needing stronger durability should write to a temporary directory
// and swap.
package vector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/hikidasu/internal/models"
)

// Files written into an index directory. Exactly one of FlatFilename or
// NaiveFilename exists per saved index, depending on the backend that
// produced it.
const (
	MetaFilename  = "meta.json"
	FlatFilename  = "index.flat"
	NaiveFilename = "vectors.bin"
)

// ErrDimensionMismatch is returned when vector shapes or metadata counts do
// not match the index dimension.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// SearchHit is one similarity-search result.
type SearchHit struct {
	Score float64      `json:"score"`
	Meta  models.Chunk `json:"meta"`
}

// backend is the storage/search strategy behind an Index. Implementations
// receive pre-validated input: every vector has the index dimension.
type backend interface {
	name() string
	add(vectors [][]float32)
	// search returns row indices and scores sorted by descending score,
	// truncated to k. Ties keep insertion order.
	search(query []float32, k int) (rows []int, scores []float64)
	save(dir string) error
	load(dir string) error
	size() int
}

// Index owns a collection of vectors plus an ordered metadata sidecar;
// position i in one corresponds to position i in the other. Not safe for
// concurrent mutation: one instance is exclusively owned for the duration of
// one ingest or one query.
type Index struct {
	dim     int
	backend backend
	metas   []models.Chunk

	forced string
	logger *zap.Logger
}

// Option configures an Index at construction.
type Option func(*Index)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(x *Index) { x.logger = l }
}

// WithBackend forces a backend by name ("flat" or "naive") instead of the
// capability check. Unknown names fall through to the default selection.
func WithBackend(name string) Option {
	return func(x *Index) { x.forced = name }
}

// New creates an index of the given dimension and selects the backend once.
// The flat backend is preferred; if it cannot be acquired the index
// permanently falls back to naive mode, recording the reason as a diagnostic
// rather than an error.
func New(dim int, opts ...Option) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vector: dimension must be positive, got %d", dim)
	}
	x := &Index{dim: dim}
	for _, opt := range opts {
		opt(x)
	}
	switch x.forced {
	case backendNaive:
		x.backend = newNaiveBackend(dim)
	case backendFlat:
		fb, err := newFlatBackend(dim)
		if err != nil {
			return nil, err
		}
		x.backend = fb
	default:
		fb, err := newFlatBackend(dim)
		if err != nil {
			if x.logger != nil {
				x.logger.Warn("flat backend unavailable, falling back to naive search", zap.Error(err))
			}
			x.backend = newNaiveBackend(dim)
		} else {
			x.backend = fb
		}
	}
	return x, nil
}

// Dimensions returns the fixed vector dimension.
func (x *Index) Dimensions() int {
	return x.dim
}

// BackendName reports which backend the index was constructed with.
func (x *Index) BackendName() string {
	return x.backend.name()
}

// Len returns the number of stored records.
func (x *Index) Len() int {
	return x.backend.size()
}

// Add appends vectors and their metadata. Row i of vectors corresponds to
// metas[i]. Returns ErrDimensionMismatch when any vector's length differs
// from the index dimension or when the counts disagree.
func (x *Index) Add(vectors [][]float32, metas []models.Chunk) error {
	if len(metas) != len(vectors) {
		return fmt.Errorf("%w: %d vectors with %d metadata records", ErrDimensionMismatch, len(vectors), len(metas))
	}
	for i, vec := range vectors {
		if len(vec) != x.dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, index expects %d", ErrDimensionMismatch, i, len(vec), x.dim)
		}
	}
	x.backend.add(vectors)
	x.metas = append(x.metas, metas...)
	return nil
}

// Search returns up to min(k, Len()) hits ordered by descending score.
// Returns ErrDimensionMismatch when the query length differs from the index
// dimension. An empty index, or k <= 0, yields an empty result and no error.
func (x *Index) Search(query []float32, k int) ([]SearchHit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d", ErrDimensionMismatch, len(query), x.dim)
	}
	if k <= 0 || x.backend.size() == 0 {
		return nil, nil
	}
	rows, scores := x.backend.search(query, k)
	hits := make([]SearchHit, 0, len(rows))
	for i, row := range rows {
		if row < 0 || row >= len(x.metas) {
			continue
		}
		hits = append(hits, SearchHit{Score: scores[i], Meta: x.metas[row]})
	}
	return hits, nil
}

// Save writes the metadata sidecar and the backend's vector file into dir,
// creating it if absent. Existing files are overwritten.
func (x *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vector: create index dir: %w", err)
	}
	metas := x.metas
	if metas == nil {
		metas = []models.Chunk{}
	}
	data, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		return fmt.Errorf("vector: marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFilename), data, 0o644); err != nil {
		return fmt.Errorf("vector: write metadata: %w", err)
	}
	if err := x.backend.save(dir); err != nil {
		return err
	}
	if x.logger != nil {
		x.logger.Info("index saved",
			zap.String("dir", dir),
			zap.String("backend", x.backend.name()),
			zap.Int("records", x.backend.size()),
		)
	}
	return nil
}

// Load replaces the index contents from dir. A missing metadata file yields
// an empty metadata list, and a missing vector file yields an empty zero-row
// store: an absent or partial directory is a valid, queryable state, never an
// error.
func (x *Index) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, MetaFilename))
	switch {
	case err == nil:
		var metas []models.Chunk
		if err := json.Unmarshal(data, &metas); err != nil {
			return fmt.Errorf("vector: parse metadata: %w", err)
		}
		x.metas = metas
	case os.IsNotExist(err):
		x.metas = nil
	default:
		return fmt.Errorf("vector: read metadata: %w", err)
	}
	return x.backend.load(dir)
}
