package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdugdh24/bandmate-backend/internal/config"
	"github.com/gdugdh24/bandmate-backend/internal/infrastructure/container"
	"github.com/gdugdh24/bandmate-backend/internal/logger"
)

const migrateTimeout = 2 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.New(cfg.Logging.Level)

	// Cancel on interrupt so a hung connection does not block shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Migration failed", "storage", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}

	log.Info("Migration finished", "storage", cfg.Storage.Type)
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// Initialize dependency injection container
	app, err := container.NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("Error closing application", "error", err)
		}
	}()

	return app.Migrate(ctx)
}
