// Package main is the hikidasu CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/hikidasu/internal/config"
	"github.com/hyperjump/hikidasu/internal/embedding"
	"github.com/hyperjump/hikidasu/internal/loader"
	"github.com/hyperjump/hikidasu/internal/pipeline"
	"github.com/hyperjump/hikidasu/internal/server"
	"github.com/hyperjump/hikidasu/internal/watcher"
	"github.com/hyperjump/hikidasu/pkg/utils"
)

var version = "dev"

// loadConfig resolves the effective configuration: the given file if set,
// config.yaml in the working directory if present, otherwise built-in
// defaults. Environment variables (including those from .env) overlay the
// result.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case path != "":
		cfg, err = config.Load(path)
	default:
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, err = config.Load(fallback)
				break
			}
		}
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "ingest":
		runIngest()
	case "query":
		runQuery()
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("hikidasu version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func setup(configPath string, debug bool) (*config.Config, *zap.Logger, *pipeline.Pipeline, *embedding.Provider) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	provider := embedding.New(embedding.Options{
		Provider:   cfg.Embedding.Provider,
		ModelPath:  cfg.Embedding.ModelPath,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		MaxTokens:  cfg.Embedding.MaxTokens,
		CacheSize:  cfg.Embedding.CacheSize,
	}, logger)

	ld := loader.New(loader.WithLogger(logger))
	p := pipeline.New(ld, provider, cfg.Split.ChunkSize, cfg.Split.ChunkOverlap, logger)
	return cfg, logger, p, provider
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	sourceDir := fs.String("source", "", "source directory (overrides config)")
	indexDir := fs.String("index", "", "index directory (overrides config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, p, provider := setup(*configPath, *debug)
	defer logger.Sync()
	defer provider.Close()

	src, idx := cfg.Storage.SourceDir, cfg.Storage.IndexDir
	if *sourceDir != "" {
		src = *sourceDir
	}
	if *indexDir != "" {
		idx = *indexDir
	}

	if err := p.Ingest(context.Background(), src, idx); err != nil {
		logger.Fatal("Ingest failed", zap.Error(err))
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	indexDir := fs.String("index", "", "index directory (overrides config)")
	topK := fs.Int("top-k", 0, "number of contexts to return (overrides config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: hikidasu query [flags] <question>")
		os.Exit(1)
	}
	question := fs.Arg(0)

	cfg, logger, p, provider := setup(*configPath, *debug)
	defer logger.Sync()
	defer provider.Close()

	idx := cfg.Storage.IndexDir
	if *indexDir != "" {
		idx = *indexDir
	}
	k := cfg.Retrieval.TopK
	if *topK > 0 {
		k = *topK
	}

	contexts, err := p.Retrieve(context.Background(), question, idx, k)
	if err != nil {
		logger.Fatal("Query failed", zap.Error(err))
	}
	if len(contexts) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, ctx := range contexts {
		fmt.Printf("%d. %s\n", i+1, utils.Truncate(ctx, 400))
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, p, provider := setup(*configPath, *debug)
	defer logger.Sync()
	defer provider.Close()

	if provider.Degraded() {
		logger.Warn("embedding provider degraded", zap.String("diagnostic", provider.Diagnostic()))
	}

	srv := server.NewServer(p, provider, cfg, logger)

	var watch *watcher.Watcher
	if cfg.Watch.Enabled {
		debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
		// Route through the server so watch-triggered runs and HTTP
		// ingests share the same serialization.
		w, err := watcher.New(cfg.Storage.SourceDir, debounce, func() {
			if err := srv.RunIngest(context.Background()); err != nil {
				logger.Warn("watch-triggered ingest failed", zap.Error(err))
			}
		}, logger)
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watch = w
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watch != nil {
		watch.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Println(`hikidasu - embedding-indexed document retrieval

Usage:
  hikidasu ingest [-config path] [-source dir] [-index dir]   build the index from a document directory
  hikidasu query  [-config path] [-index dir] [-top-k n] <question>
                                                              retrieve the most similar chunks
  hikidasu server [-config path] [-debug]                     run the HTTP API
  hikidasu version                                            print version
  hikidasu help                                               show this help`)
}
