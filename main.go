package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"law-agent/config"
	"law-agent/corpus"
	"law-agent/embed"
	"law-agent/graph"
	"law-agent/llmclient"
	"law-agent/search"
	"law-agent/web"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Pull in .env before viper reads the environment
	if err := godotenv.Load(); err != nil {
		tempLogger.Debug("No .env file loaded", zap.Error(err))
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	// The corpus is a read-only artifact; a broken corpus means the process
	// cannot serve grounded answers at all.
	store, err := corpus.Load(cfg.CorpusPath, logger)
	if err != nil {
		logger.Fatal("Failed to load passage corpus", zap.Error(err))
	}

	engine := search.NewEngine(store)
	embedder := embed.New(cfg, logger)
	gateway := llmclient.New(cfg, logger)

	orchestrator := graph.New(gateway, embedder, engine, cfg.RAGResults, logger)

	webServer := web.NewServer(orchestrator, logger, cfg)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting legal QA generation server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
