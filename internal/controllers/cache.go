package controllers

import (
	"time"

	"github.com/amaumene/segmentarr/internal/models"
	gocache "github.com/patrickmn/go-cache"
)

// SegmentCache holds the optimistic per-item segment lists alongside the
// last server-confirmed snapshots. Mutations update the optimistic side
// immediately; a failed mutation restores the prior snapshot and, when the
// restored list no longer matches what the server confirmed, drops the
// entry entirely to force a hard refetch.
type SegmentCache struct {
	local     *gocache.Cache
	confirmed *gocache.Cache
}

// NewSegmentCache creates a cache whose entries stay fresh for ttl
func NewSegmentCache(ttl time.Duration) *SegmentCache {
	return &SegmentCache{
		local:     gocache.New(ttl, 2*ttl),
		confirmed: gocache.New(ttl, 2*ttl),
	}
}

// Get returns the optimistic segment list for an item
func (c *SegmentCache) Get(itemID string) ([]models.Segment, bool) {
	v, found := c.local.Get(itemID)
	if !found {
		return nil, false
	}
	return v.([]models.Segment), true
}

// Set replaces the optimistic segment list for an item
func (c *SegmentCache) Set(itemID string, segments []models.Segment) {
	c.local.SetDefault(itemID, segments)
}

// Store records a segment list as both the optimistic view and the
// server-confirmed snapshot, used after a successful fetch or mutation
func (c *SegmentCache) Store(itemID string, segments []models.Segment) {
	c.local.SetDefault(itemID, segments)
	c.confirmed.SetDefault(itemID, segments)
}

// Confirmed returns the last server-confirmed snapshot for an item
func (c *SegmentCache) Confirmed(itemID string) ([]models.Segment, bool) {
	v, found := c.confirmed.Get(itemID)
	if !found {
		return nil, false
	}
	return v.([]models.Segment), true
}

// Invalidate drops both views for an item, forcing the next read to refetch
func (c *SegmentCache) Invalidate(itemID string) {
	c.local.Delete(itemID)
	c.confirmed.Delete(itemID)
}

// Restore puts a pre-mutation snapshot back after a failed mutation.
// When the snapshot diverges from the server-confirmed state the entry is
// invalidated instead, and the divergence is reported to the caller.
func (c *SegmentCache) Restore(itemID string, snapshot []models.Segment) bool {
	confirmed, ok := c.Confirmed(itemID)
	if ok && !segmentsEqual(snapshot, confirmed) {
		c.Invalidate(itemID)
		return true
	}
	c.local.SetDefault(itemID, snapshot)
	return false
}

// ItemCount returns the number of cached optimistic entries
func (c *SegmentCache) ItemCount() int {
	return c.local.ItemCount()
}

// DeleteExpired evicts expired entries from both views
func (c *SegmentCache) DeleteExpired() {
	c.local.DeleteExpired()
	c.confirmed.DeleteExpired()
}

// segmentsEqual compares two segment lists by identity and bounds
func segmentsEqual(a, b []models.Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Type != b[i].Type ||
			a[i].Start != b[i].Start || a[i].End != b[i].End {
			return false
		}
	}
	return true
}
