// Package loader discovers supported documents under a source directory and
// extracts their text.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/hikidasu/internal/extract"
	"github.com/hyperjump/hikidasu/internal/models"
)

// ErrSourceNotFound is returned when the source directory does not exist or
// is not a directory.
var ErrSourceNotFound = errors.New("loader: source directory not found")

// defaultExtensions lists the file types picked up by a directory scan.
var defaultExtensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx"}

// Loader walks a directory tree and turns matching files into Documents.
// Files that fail extraction are skipped with a warning rather than aborting
// the whole load.
type Loader struct {
	extractor  *extract.Extractor
	extensions []string
	logger     *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithExtensions overrides the default file extension filter. Extensions
// include the leading dot and are matched case-insensitively.
func WithExtensions(exts []string) Option {
	return func(l *Loader) { l.extensions = exts }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New returns a Loader with the default extension filter.
func New(opts ...Option) *Loader {
	l := &Loader{
		extractor:  extract.NewExtractor(),
		extensions: defaultExtensions,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load walks dir recursively and returns one Document per readable matching
// file, in walk order. An empty directory yields an empty slice and no error;
// a missing directory yields ErrSourceNotFound.
func (l *Loader) Load(dir string) ([]models.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, dir)
		}
		return nil, fmt.Errorf("loader: stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, dir)
	}

	var docs []models.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !l.matches(path) {
			return nil
		}
		text, err := l.extractor.Extract(path)
		if err != nil {
			if l.logger != nil {
				l.logger.Warn("skipping unreadable document", zap.String("path", path), zap.Error(err))
			}
			return nil
		}
		docs = append(docs, models.Document{Path: path, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walk source directory: %w", err)
	}
	if l.logger != nil {
		l.logger.Info("documents loaded", zap.String("dir", dir), zap.Int("count", len(docs)))
	}
	return docs, nil
}

func (l *Loader) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range l.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
