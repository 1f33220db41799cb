// Package config provides configuration loading for the hikidasu tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Split     SplitConfig     `yaml:"split"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the source and index directory paths.
type StorageConfig struct {
	IndexDir  string `yaml:"index_dir"`
	SourceDir string `yaml:"source_dir"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SplitConfig holds chunking settings.
type SplitConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig holds query-time settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// WatchConfig holds source directory watch settings.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.IndexDir = expandPath(cfg.Storage.IndexDir, configDir)
	cfg.Storage.SourceDir = expandPath(cfg.Storage.SourceDir, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given: all
// defaults applied, paths relative to the working directory.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyEnv overlays environment variables onto cfg. Recognized variables:
// INDEX_DIR, SOURCE_DIR, CHUNK_SIZE, CHUNK_OVERLAP, EMBEDDING_PROVIDER,
// OPENAI_API_KEY, TOP_K. Unset or malformed values leave cfg untouched.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv("INDEX_DIR"); v != "" {
		cfg.Storage.IndexDir = v
	}
	if v := os.Getenv("SOURCE_DIR"); v != "" {
		cfg.Storage.SourceDir = v
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if n, err := strconv.Atoi(os.Getenv("CHUNK_SIZE")); err == nil && n > 0 {
		cfg.Split.ChunkSize = n
	}
	if n, err := strconv.Atoi(os.Getenv("CHUNK_OVERLAP")); err == nil && n >= 0 {
		cfg.Split.ChunkOverlap = n
	}
	if n, err := strconv.Atoi(os.Getenv("TOP_K")); err == nil && n > 0 {
		cfg.Retrieval.TopK = n
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
