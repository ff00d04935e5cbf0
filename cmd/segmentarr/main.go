package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/amaumene/segmentarr/internal/api"
	"github.com/amaumene/segmentarr/internal/config"
	"github.com/amaumene/segmentarr/internal/controllers"
	"github.com/amaumene/segmentarr/internal/models"
	"github.com/amaumene/segmentarr/internal/playback"
	"github.com/amaumene/segmentarr/internal/scheduler"
	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/amaumene/segmentarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Segmentarr")
	logger.WithField("config_dir", filepath.Dir(cfg.JournalFile)).Info("Configuration loaded")

	// 3. Initialize update journal
	db, err := models.NewDatabase(cfg.JournalFile)
	if err != nil {
		return fmt.Errorf("failed to initialize journal database: %w", err)
	}
	defer db.Close()
	logger.Info("Update journal initialized")

	// 4. Initialize media server client
	client, err := mediaserver.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media server client: %w", err)
	}
	logger.WithField("server", cfg.ServerURL).Info("Media server client initialized")

	// 5. Initialize caches and controllers
	cache := controllers.NewSegmentCache(cfg.CacheTTL)
	segmentCtrl := controllers.NewSegmentController(client, db, cache, logger)
	compensateCtrl := controllers.NewCompensationController(client, db, cache, logger)
	prober := playback.NewCachedProber(&playback.StaticProber{})
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(compensateCtrl, cache, db, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, cache, segmentCtrl, client, prober, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Segmentarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Segmentarr stopped")
	return nil
}
