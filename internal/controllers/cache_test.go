package controllers

import (
	"testing"
	"time"

	"github.com/amaumene/segmentarr/internal/models"
)

func TestCacheRestoreMatchingSnapshot(t *testing.T) {
	cache := NewSegmentCache(time.Minute)
	segments := []models.Segment{models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)}

	cache.Store("item-1", segments)

	// Optimistic mutation, then failure: restore the unchanged snapshot
	cache.Set("item-1", nil)
	if diverged := cache.Restore("item-1", segments); diverged {
		t.Error("snapshot matching confirmed state should restore, not diverge")
	}

	restored, found := cache.Get("item-1")
	if !found || len(restored) != 1 {
		t.Fatal("restored list missing from cache")
	}
}

func TestCacheRestoreDivergedSnapshotInvalidates(t *testing.T) {
	cache := NewSegmentCache(time.Minute)
	confirmed := []models.Segment{models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)}
	cache.Store("item-1", confirmed)

	// A snapshot that no longer matches what the server confirmed
	stale := []models.Segment{models.NewSegment("item-1", models.SegmentTypeOutro, 100, 130)}
	if diverged := cache.Restore("item-1", stale); !diverged {
		t.Error("diverged snapshot should be reported")
	}

	if _, found := cache.Get("item-1"); found {
		t.Error("diverged entry should be invalidated to force a refetch")
	}
}

func TestCacheInvalidateDropsBothViews(t *testing.T) {
	cache := NewSegmentCache(time.Minute)
	segments := []models.Segment{models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)}
	cache.Store("item-1", segments)

	cache.Invalidate("item-1")

	if _, found := cache.Get("item-1"); found {
		t.Error("optimistic view survived invalidation")
	}
	if _, found := cache.Confirmed("item-1"); found {
		t.Error("confirmed view survived invalidation")
	}
}
