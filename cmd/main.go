package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"launchboard/internal/api"
	"launchboard/internal/clock"
	"launchboard/internal/config"
	"launchboard/internal/entity"
	"launchboard/internal/plugins"
	"launchboard/internal/session"
	"launchboard/internal/slots"
	"launchboard/internal/store"
	"launchboard/pkg/plugin"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting Launchboard",
		zap.Int("port", cfg.Port),
		zap.String("seed_file", cfg.SeedFile),
		zap.Duration("session_ttl", cfg.SessionTTL))

	// Entity catalog (built-in demo seed unless a seed file is configured)
	catalog, err := entity.LoadCatalog(cfg.SeedFile, logger)
	if err != nil {
		logger.Fatal("Failed to load entity catalog", zap.Error(err))
	}

	// Plugin registry and the closed factory table
	registry := plugin.NewRegistry(logger)
	if err := plugins.Register(registry); err != nil {
		logger.Fatal("Failed to register plugins", zap.Error(err))
	}
	logger.Info("Plugins registered", zap.Strings("plugins", registry.Names()))

	// Stores, sessions, and the plugin service
	clk := clock.NewRealClock()
	mem := store.NewMemory(clk, logger)
	sessions := session.NewManager(cfg.SessionTTL, clk, logger)

	loader := slots.NewLoader(registry, plugins.Factories(), &plugin.Context{
		Logger:  logger,
		Catalog: catalog,
	}, logger)
	service := slots.NewService(registry, loader, mem, mem.Overrides(), logger)

	// HTTP API
	server := api.NewServer(service, catalog, sessions, logger, cfg.Port)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start API server", zap.Error(err))
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Application running. Press Ctrl+C to exit.")
	<-sigChan

	logger.Info("Shutting down gracefully...")

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop API server", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	loader.UnloadAll(ctx)
}
