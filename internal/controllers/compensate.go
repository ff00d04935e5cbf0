package controllers

import (
	"context"
	"fmt"

	"github.com/amaumene/segmentarr/internal/models"
	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/amaumene/segmentarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// CompensationController retries the create half of updates whose old
// segment was deleted but whose replacement never made it to the server
type CompensationController struct {
	client *mediaserver.Client
	db     *models.Database
	cache  *SegmentCache
	logger *logrus.Logger
}

// NewCompensationController creates a new compensation controller
func NewCompensationController(client *mediaserver.Client, db *models.Database, cache *SegmentCache, logger *logrus.Logger) *CompensationController {
	return &CompensationController{
		client: client,
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// Run replays every unresolved journal entry. Entries that succeed move to
// the recreated phase; entries that fail again stay queued with their
// attempt count bumped.
func (c *CompensationController) Run(ctx context.Context) error {
	entries, err := c.db.GetUnresolvedEntries()
	if err != nil {
		return fmt.Errorf("failed to load unresolved journal entries: %w", err)
	}

	if len(entries) == 0 {
		c.logger.Debug("No pending segment updates to compensate")
		return nil
	}

	c.logger.WithField("count", len(entries)).Info("Compensating interrupted segment updates")

	for _, entry := range entries {
		created, err := c.client.CreateSegment(ctx, entry.NewSegment)
		if err != nil {
			entry.Phase = models.UpdatePhaseFailed
			entry.Attempts++
			entry.LastError = utils.SanitizeError(err)
			if jErr := c.db.UpdateJournalEntry(entry); jErr != nil {
				c.logger.WithError(jErr).Error("Failed to record compensation attempt")
			}
			c.logger.WithFields(logrus.Fields{
				"entry_id": entry.ID,
				"item_id":  entry.ItemID,
				"attempts": entry.Attempts,
				"error":    entry.LastError,
			}).Warn("Compensation attempt failed")

			if mediaserver.IsCancellation(err) {
				return err
			}
			continue
		}

		entry.Phase = models.UpdatePhaseRecreated
		entry.LastError = ""
		if err := c.db.UpdateJournalEntry(entry); err != nil {
			c.logger.WithError(err).Error("Failed to resolve journal entry")
		}

		c.cache.Invalidate(entry.ItemID)

		c.logger.WithFields(logrus.Fields{
			"entry_id":   entry.ID,
			"item_id":    entry.ItemID,
			"segment_id": created.ID.String(),
		}).Info("Recovered interrupted segment update")
	}

	return nil
}
