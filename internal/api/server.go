package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/segmentarr/internal/api/handlers"
	"github.com/amaumene/segmentarr/internal/api/middleware"
	"github.com/amaumene/segmentarr/internal/config"
	"github.com/amaumene/segmentarr/internal/controllers"
	"github.com/amaumene/segmentarr/internal/models"
	"github.com/amaumene/segmentarr/internal/playback"
	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	db          *models.Database
	cache       *controllers.SegmentCache
	segmentCtrl *controllers.SegmentController
	client      *mediaserver.Client
	prober      playback.Prober
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	db *models.Database,
	cache *controllers.SegmentCache,
	segmentCtrl *controllers.SegmentController,
	client *mediaserver.Client,
	prober playback.Prober,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		db:          db,
		cache:       cache,
		segmentCtrl: segmentCtrl,
		client:      client,
		prober:      prober,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.Handle("GET /health", healthHandler)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, s.cache, s.logger)
	mux.Handle("GET /status", statusHandler)

	// Segment editing
	segmentsHandler := handlers.NewSegmentsHandler(s.segmentCtrl, s.client, s.logger)
	mux.HandleFunc("GET /api/items/{id}/segments", segmentsHandler.List)
	mux.HandleFunc("POST /api/items/{id}/segments", segmentsHandler.Create)
	mux.HandleFunc("PUT /api/items/{id}/segments", segmentsHandler.BatchSave)
	mux.HandleFunc("DELETE /api/items/{id}/segments/{segmentId}", segmentsHandler.Delete)
	mux.HandleFunc("POST /api/items/{id}/segments/import", segmentsHandler.Import)

	// Playback compatibility
	compatHandler := handlers.NewCompatHandler(s.client, s.prober, s.logger)
	mux.Handle("GET /api/items/{id}/compatibility", compatHandler)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
