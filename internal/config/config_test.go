package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  index_dir: ./idx
  source_dir: /data/docs
embedding:
  provider: onnx
  model_path: /models/all-MiniLM-L6-v2.onnx
  dimensions: 384
split:
  chunk_size: 500
  chunk_overlap: 50
retrieval:
  top_k: 3
watch:
  enabled: true
  debounce_ms: 500
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug = false")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Storage.IndexDir != filepath.Join(dir, "idx") {
		t.Errorf("IndexDir = %q, want expanded relative to config dir", cfg.Storage.IndexDir)
	}
	if cfg.Storage.SourceDir != "/data/docs" {
		t.Errorf("SourceDir = %q", cfg.Storage.SourceDir)
	}
	if cfg.Embedding.Provider != "onnx" || cfg.Embedding.ModelPath != "/models/all-MiniLM-L6-v2.onnx" {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Split.ChunkSize != 500 || cfg.Split.ChunkOverlap != 50 {
		t.Errorf("split = %+v", cfg.Split)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("TopK = %d", cfg.Retrieval.TopK)
	}
	if !cfg.Watch.Enabled || cfg.Watch.DebounceMS != 500 {
		t.Errorf("watch = %+v", cfg.Watch)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("debug: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.Embedding.Provider != "fallback" || cfg.Embedding.Dimensions != 384 {
		t.Errorf("embedding defaults = %+v", cfg.Embedding)
	}
	if cfg.Split.ChunkSize != 800 || cfg.Split.ChunkOverlap != 120 {
		t.Errorf("split defaults = %+v", cfg.Split)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK default = %d", cfg.Retrieval.TopK)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Storage.IndexDir != "./index" || cfg.Storage.SourceDir != "./documents" {
		t.Errorf("storage defaults = %+v", cfg.Storage)
	}
	if cfg.Watch.DebounceMS != 2000 {
		t.Errorf("DebounceMS default = %d", cfg.Watch.DebounceMS)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INDEX_DIR", "/env/index")
	t.Setenv("SOURCE_DIR", "/env/docs")
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHUNK_SIZE", "321")
	t.Setenv("CHUNK_OVERLAP", "21")
	t.Setenv("TOP_K", "7")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Storage.IndexDir != "/env/index" || cfg.Storage.SourceDir != "/env/docs" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Split.ChunkSize != 321 || cfg.Split.ChunkOverlap != 21 {
		t.Errorf("split = %+v", cfg.Split)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("TopK = %d", cfg.Retrieval.TopK)
	}
}

func TestApplyEnv_MalformedNumbersIgnored(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("TOP_K", "-2")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Split.ChunkSize != 800 {
		t.Errorf("ChunkSize = %d, want default kept", cfg.Split.ChunkSize)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want default kept", cfg.Retrieval.TopK)
	}
}

func TestExpandPath_HomeRelative(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got := expandPath("data/index", "/etc/hikidasu")
	if !strings.HasPrefix(got, home) {
		t.Errorf("expandPath = %q, want under home", got)
	}
}
