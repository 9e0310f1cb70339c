// ABOUTME: Main entry point for the studyrag HTTP server
// ABOUTME: Wires config, storage, clients, orchestrators, and the Fiber app
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"studyrag/internal/config"
	"studyrag/internal/llm"
	"studyrag/internal/logger"
	"studyrag/internal/rag"
	"studyrag/internal/server"
	"studyrag/internal/storage"
	"studyrag/internal/wiki"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog := logger.New(cfg.LogFilePath, cfg.IsProduction())
	defer func() { _ = zlog.Sync() }()

	client, err := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
		Timeout:        cfg.Timeout,
	})
	if err != nil {
		zlog.Fatal("failed to initialize API client", zap.Error(err))
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		zlog.Fatal("failed to open store", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	fetcher := wiki.NewFetcher("", cfg.Timeout)
	ingestor := rag.NewIngestor(client, store, zlog, cfg.ChunkMaxChars, cfg.MaxDocChunks)
	answerer := rag.NewAnswerer(client, client, store, zlog)
	if cfg.AutoWikiArticles > 0 {
		answerer.WithAutoWiki(fetcher, ingestor, cfg.AutoWikiArticles)
	}

	srv := server.New(cfg, zlog, ingestor, answerer, store, fetcher)

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		zlog.Info("shutdown signal received")
		if err := srv.Shutdown(); err != nil {
			zlog.Error("shutdown error", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
