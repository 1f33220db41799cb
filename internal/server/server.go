// Package server provides the HTTP API for hikidasu.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/hikidasu/internal/config"
	"github.com/hyperjump/hikidasu/internal/embedding"
	"github.com/hyperjump/hikidasu/internal/pipeline"
)

// Server is the HTTP front-end over the ingest and retrieval pipelines.
type Server struct {
	pipeline *pipeline.Pipeline
	provider *embedding.Provider
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server

	// ingestMu serializes ingest runs; the index directory is rewritten
	// wholesale and concurrent writers would corrupt it.
	ingestMu sync.Mutex
}

// NewServer creates a server with the given dependencies.
func NewServer(p *pipeline.Pipeline, provider *embedding.Provider, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		pipeline: p,
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// RunIngest executes one ingest run over the configured source and index
// directories. Every ingest trigger (HTTP and watch) must come through here
// so runs never overlap.
func (s *Server) RunIngest(ctx context.Context) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	return s.pipeline.Ingest(ctx, s.config.Storage.SourceDir, s.config.Storage.IndexDir)
}
