package controllers

import (
	"context"
	"fmt"
	"sync"

	"github.com/amaumene/segmentarr/internal/models"
	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/amaumene/segmentarr/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SegmentController keeps the client-side segment lists consistent with
// server state across create, delete, update and batch-save operations
type SegmentController struct {
	client *mediaserver.Client
	db     *models.Database
	cache  *SegmentCache
	logger *logrus.Logger
}

// NewSegmentController creates a new segment controller
func NewSegmentController(client *mediaserver.Client, db *models.Database, cache *SegmentCache, logger *logrus.Logger) *SegmentController {
	return &SegmentController{
		client: client,
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// GetSegmentsByID returns the segments for a media item. Fetch failures
// and cancellations are logged and reported as an empty list, never as an
// error to the caller.
func (c *SegmentController) GetSegmentsByID(ctx context.Context, itemID string) []models.Segment {
	if itemID == "" {
		c.logger.Warn("Segment fetch requested without an item ID")
		return []models.Segment{}
	}

	if segments, found := c.cache.Get(itemID); found {
		return segments
	}

	segments, err := c.client.GetSegments(ctx, itemID)
	if err != nil {
		if mediaserver.IsCancellation(err) {
			c.logger.WithField("item_id", itemID).Debug("Segment fetch cancelled")
		} else {
			c.logger.WithFields(logrus.Fields{
				"item_id": itemID,
				"error":   utils.SanitizeError(err),
			}).Error("Failed to fetch segments")
		}
		return []models.Segment{}
	}

	c.cache.Store(itemID, segments)
	return segments
}

// CreateSegment validates and persists a new segment. Validation failures
// are rejected before any network call.
func (c *SegmentController) CreateSegment(ctx context.Context, seg models.Segment) (models.Segment, error) {
	if err := seg.Validate(); err != nil {
		return models.Segment{}, fmt.Errorf("segment rejected: %w", err)
	}

	created, err := c.client.CreateSegment(ctx, seg)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"item_id": seg.ItemID,
			"type":    seg.Type,
			"error":   utils.SanitizeError(err),
		}).Error("Failed to create segment")
		return models.Segment{}, err
	}

	if cached, found := c.cache.Get(seg.ItemID); found {
		c.cache.Store(seg.ItemID, append(cloneSegments(cached), created))
	}

	return created, nil
}

// DeleteSegment removes a segment, applying the optimistic update contract:
// the cached row disappears immediately and comes back if the delete fails.
// Returns true on success.
func (c *SegmentController) DeleteSegment(ctx context.Context, seg models.Segment) bool {
	if seg.ItemID == "" || seg.ID == uuid.Nil {
		c.logger.Warn("Segment delete requested without identifiers")
		return false
	}

	snapshot, hadCache := c.cache.Get(seg.ItemID)
	if hadCache {
		c.cache.Set(seg.ItemID, removeSegment(snapshot, seg))
	}

	if err := c.client.DeleteSegment(ctx, seg); err != nil {
		c.logger.WithFields(logrus.Fields{
			"item_id":    seg.ItemID,
			"segment_id": seg.ID.String(),
			"error":      utils.SanitizeError(err),
		}).Error("Failed to delete segment")

		if hadCache {
			if diverged := c.cache.Restore(seg.ItemID, snapshot); diverged {
				c.logger.WithField("item_id", seg.ItemID).Warn("Cache diverged from confirmed state, forcing refetch")
			}
		}
		return false
	}

	if hadCache {
		c.cache.Store(seg.ItemID, removeSegment(snapshot, seg))
	}
	return true
}

// UpdateSegment replaces a segment via delete-then-create, since the server
// has no in-place update endpoint. Each update is journaled so a create
// failure after a successful delete is compensated later instead of losing
// the segment.
func (c *SegmentController) UpdateSegment(ctx context.Context, old, new models.Segment) (models.Segment, error) {
	if old.ItemID == "" {
		return models.Segment{}, fmt.Errorf("old segment is missing an item ID")
	}
	if err := new.Validate(); err != nil {
		return models.Segment{}, fmt.Errorf("replacement segment rejected: %w", err)
	}

	entry := &models.UpdateJournalEntry{
		ItemID:     old.ItemID,
		Phase:      models.UpdatePhasePending,
		OldSegment: old,
		NewSegment: new,
	}
	if err := c.db.CreateJournalEntry(entry); err != nil {
		return models.Segment{}, fmt.Errorf("failed to journal update: %w", err)
	}

	if err := c.client.DeleteSegment(ctx, old); err != nil {
		// Nothing changed server-side, the journal entry is moot
		if delErr := c.db.DeleteJournalEntry(entry.ID); delErr != nil {
			c.logger.WithError(delErr).Warn("Failed to drop journal entry for aborted update")
		}
		return models.Segment{}, fmt.Errorf("failed to delete old segment: %w", err)
	}

	entry.Phase = models.UpdatePhaseDeleted
	if err := c.db.UpdateJournalEntry(entry); err != nil {
		c.logger.WithError(err).Warn("Failed to advance journal entry")
	}

	created, err := c.client.CreateSegment(ctx, new)
	if err != nil {
		entry.Phase = models.UpdatePhaseFailed
		entry.Attempts++
		entry.LastError = utils.SanitizeError(err)
		if jErr := c.db.UpdateJournalEntry(entry); jErr != nil {
			c.logger.WithError(jErr).Error("Failed to record failed update in journal")
		}
		c.cache.Invalidate(old.ItemID)
		return models.Segment{}, fmt.Errorf("old segment deleted but create failed, queued for compensation: %w", err)
	}

	entry.Phase = models.UpdatePhaseRecreated
	if err := c.db.UpdateJournalEntry(entry); err != nil {
		c.logger.WithError(err).Warn("Failed to resolve journal entry")
	}

	if cached, found := c.cache.Get(old.ItemID); found {
		c.cache.Store(old.ItemID, append(removeSegment(cached, old), created))
	}

	return created, nil
}

// BatchSaveSegments replaces the full segment list of an item: every
// existing segment is deleted, then every new segment is created. Deletes
// fan out concurrently and all of them are issued before the first create.
// Individual failures are logged without aborting the batch; only the
// successfully created segments are returned.
func (c *SegmentController) BatchSaveSegments(ctx context.Context, itemID string, existing, new []models.Segment) []models.Segment {
	if itemID == "" {
		c.logger.Warn("Batch save requested without an item ID")
		return []models.Segment{}
	}

	snapshot, hadCache := c.cache.Get(itemID)
	c.cache.Set(itemID, cloneSegments(new))

	var (
		mu            sync.Mutex
		serverChanged bool
		failed        bool
	)

	var wg sync.WaitGroup
	for _, seg := range existing {
		wg.Add(1)
		go func(seg models.Segment) {
			defer wg.Done()
			err := c.client.DeleteSegment(ctx, seg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = true
				c.logger.WithFields(logrus.Fields{
					"item_id":    itemID,
					"segment_id": seg.ID.String(),
					"error":      utils.SanitizeError(err),
				}).Error("Batch save: delete failed")
				return
			}
			serverChanged = true
		}(seg)
	}
	wg.Wait()

	created := make([]models.Segment, 0, len(new))
	for _, seg := range new {
		wg.Add(1)
		go func(seg models.Segment) {
			defer wg.Done()
			result, err := c.client.CreateSegment(ctx, seg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = true
				c.logger.WithFields(logrus.Fields{
					"item_id": itemID,
					"type":    seg.Type,
					"error":   utils.SanitizeError(err),
				}).Error("Batch save: create failed")
				return
			}
			serverChanged = true
			created = append(created, result)
		}(seg)
	}
	wg.Wait()

	if failed {
		switch {
		case serverChanged:
			// Partial writes landed, neither the snapshot nor the optimistic
			// list reflects the server anymore
			c.cache.Invalidate(itemID)
			c.logger.WithField("item_id", itemID).Warn("Batch save partially failed, forcing refetch")
		case hadCache:
			c.cache.Restore(itemID, snapshot)
		default:
			c.cache.Invalidate(itemID)
		}
		return created
	}

	c.cache.Store(itemID, cloneSegments(created))
	return created
}

// removeSegment returns a copy of segments without the given segment
func removeSegment(segments []models.Segment, target models.Segment) []models.Segment {
	result := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.ID == target.ID {
			continue
		}
		result = append(result, seg)
	}
	return result
}

// cloneSegments copies a segment slice so cached lists are never shared
func cloneSegments(segments []models.Segment) []models.Segment {
	result := make([]models.Segment, len(segments))
	copy(result, segments)
	return result
}
