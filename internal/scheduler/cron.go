package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/segmentarr/internal/controllers"
	"github.com/amaumene/segmentarr/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// resolvedRetention is how long completed update journal entries are kept
// before pruning, so the status endpoint can still show recent recoveries
const resolvedRetention = 24 * time.Hour

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron           *cron.Cron
	compensateCtrl *controllers.CompensationController
	cache          *controllers.SegmentCache
	db             *models.Database
	logger         *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	compensateCtrl *controllers.CompensationController,
	cache *controllers.SegmentCache,
	db *models.Database,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		compensateCtrl: compensateCtrl,
		cache:          cache,
		db:             db,
		logger:         logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 5 minutes: retry interrupted segment updates
	_, err := s.cron.AddFunc("*/5 * * * *", func() {
		s.runCompensation()
	})
	if err != nil {
		return fmt.Errorf("failed to add compensation job: %w", err)
	}

	// Every hour: prune resolved journal entries and expired cache entries
	_, err = s.cron.AddFunc("0 * * * *", func() {
		s.runPrune()
	})
	if err != nil {
		return fmt.Errorf("failed to add prune job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Recover updates interrupted by the previous shutdown immediately
	go s.runCompensation()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runCompensation executes the compensation job
func (s *Scheduler) runCompensation() {
	s.logger.Debug("Running scheduled compensation")
	ctx := context.Background()

	if err := s.compensateCtrl.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Compensation job failed")
	}
}

// runPrune executes the journal and cache prune job
func (s *Scheduler) runPrune() {
	s.logger.Debug("Running scheduled prune")

	pruned, err := s.db.PruneResolvedEntries(time.Now().Add(-resolvedRetention))
	if err != nil {
		s.logger.WithError(err).Error("Journal prune failed")
	} else if pruned > 0 {
		s.logger.WithField("count", pruned).Info("Pruned resolved journal entries")
	}

	s.cache.DeleteExpired()
}
