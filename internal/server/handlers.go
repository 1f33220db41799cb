package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/hikidasu/internal/loader"
	"github.com/hyperjump/hikidasu/internal/vector"
)

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type queryResponse struct {
	Contexts []string `json:"contexts"`
	Count    int      `json:"count"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.config.Retrieval.TopK
	}
	s.logger.Debug("query request", zap.String("query", req.Query), zap.Int("top_k", topK))

	contexts, err := s.pipeline.Retrieve(r.Context(), req.Query, s.config.Storage.IndexDir, topK)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if contexts == nil {
		contexts = []string{}
	}
	s.respondJSON(w, http.StatusOK, queryResponse{Contexts: contexts, Count: len(contexts)})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("ingest request", zap.String("source_dir", s.config.Storage.SourceDir))
	err := s.RunIngest(r.Context())
	if err != nil {
		if errors.Is(err, loader.ErrSourceNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ingested"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	indexPresent := false
	if _, err := os.Stat(filepath.Join(s.config.Storage.IndexDir, vector.MetaFilename)); err == nil {
		indexPresent = true
	}
	resp := map[string]interface{}{
		"embedding_strategy": s.provider.Strategy(),
		"degraded":           s.provider.Degraded(),
		"dimensions":         s.provider.Dimensions(),
		"index_present":      indexPresent,
	}
	if diag := s.provider.Diagnostic(); diag != "" {
		resp["diagnostic"] = diag
	}
	resp["config"] = map[string]interface{}{
		"index_dir":     s.config.Storage.IndexDir,
		"source_dir":    s.config.Storage.SourceDir,
		"chunk_size":    s.config.Split.ChunkSize,
		"chunk_overlap": s.config.Split.ChunkOverlap,
		"top_k":         s.config.Retrieval.TopK,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
