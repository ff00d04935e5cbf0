package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/amaumene/segmentarr/internal/config"
	"github.com/amaumene/segmentarr/internal/models"
	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/sirupsen/logrus"
)

// wireSegment mirrors the server's segment resource for the mock
type wireSegment struct {
	ID         string `json:"Id"`
	ItemID     string `json:"ItemId"`
	Type       string `json:"Type"`
	StartTicks int64  `json:"StartTicks"`
	EndTicks   int64  `json:"EndTicks"`
}

// mockServer is an in-memory stand-in for the media server's segment API
type mockServer struct {
	mu          sync.Mutex
	segments    map[string]wireSegment // keyed by segment ID
	failCreates bool
	failDeletes bool
}

func newMockServer() *mockServer {
	return &mockServer{segments: make(map[string]wireSegment)}
}

func (m *mockServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /MediaSegments/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		items := make([]wireSegment, 0)
		for _, seg := range m.segments {
			if seg.ItemID == r.PathValue("itemId") {
				items = append(items, seg)
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Items":            items,
			"TotalRecordCount": len(items),
		})
	})

	mux.HandleFunc("POST /MediaSegments/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.failCreates {
			http.Error(w, "create rejected", http.StatusInternalServerError)
			return
		}
		var seg wireSegment
		if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		m.segments[seg.ID] = seg
		json.NewEncoder(w).Encode(seg)
	})

	mux.HandleFunc("DELETE /MediaSegments/{segmentId}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.failDeletes {
			http.Error(w, "delete rejected", http.StatusInternalServerError)
			return
		}
		id := r.PathValue("segmentId")
		if _, ok := m.segments[id]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		delete(m.segments, id)
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func (m *mockServer) count(itemID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, seg := range m.segments {
		if seg.ItemID == itemID {
			n++
		}
	}
	return n
}

func (m *mockServer) seed(seg models.Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[seg.ID.String()] = wireSegment{
		ID:         seg.ID.String(),
		ItemID:     seg.ItemID,
		Type:       "Intro",
		StartTicks: models.SecondsToTicks(seg.Start),
		EndTicks:   models.SecondsToTicks(seg.End),
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestController wires a controller against the mock server with a
// fresh journal database and cache
func newTestController(t *testing.T, mock *mockServer) (*SegmentController, *CompensationController, *SegmentCache, *models.Database) {
	t.Helper()

	server := httptest.NewServer(mock.handler())
	t.Cleanup(server.Close)

	cfg := &config.Config{
		ServerURL:        server.URL,
		ServerToken:      "test-token",
		RequestTimeout:   5 * time.Second,
		RetryMaxAttempts: 1,
	}
	client, err := mediaserver.NewClient(cfg, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cache := NewSegmentCache(time.Minute)
	ctrl := NewSegmentController(client, db, cache, testLogger())
	compensate := NewCompensationController(client, db, cache, testLogger())
	return ctrl, compensate, cache, db
}

func TestGetSegmentsByIDSwallowsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.Config{
		ServerURL:        server.URL,
		ServerToken:      "test-token",
		RequestTimeout:   time.Second,
		RetryMaxAttempts: 1,
	}
	client, err := mediaserver.NewClient(cfg, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	defer db.Close()

	ctrl := NewSegmentController(client, db, NewSegmentCache(time.Minute), testLogger())

	segments := ctrl.GetSegmentsByID(context.Background(), "item-1")
	if segments == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(segments))
	}
}

func TestBatchSaveReplacesAllSegments(t *testing.T) {
	mock := newMockServer()
	existing := []models.Segment{
		models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30),
		models.NewSegment("item-1", models.SegmentTypeOutro, 1200, 1290),
	}
	for _, seg := range existing {
		mock.seed(seg)
	}

	ctrl, _, cache, _ := newTestController(t, mock)

	replacement := []models.Segment{
		models.NewSegment("item-1", models.SegmentTypeIntro, 5, 35),
		models.NewSegment("item-1", models.SegmentTypeRecap, 35, 95),
		models.NewSegment("item-1", models.SegmentTypeOutro, 1180, 1290),
	}

	created := ctrl.BatchSaveSegments(context.Background(), "item-1", existing, replacement)

	if len(created) != 3 {
		t.Fatalf("expected 3 created segments, got %d", len(created))
	}
	if n := mock.count("item-1"); n != 3 {
		t.Errorf("server holds %d segments, want 3 (no residual existing segments)", n)
	}

	cached, found := cache.Get("item-1")
	if !found {
		t.Fatal("cache should hold the new list after a clean batch save")
	}
	if len(cached) != 3 {
		t.Errorf("cache holds %d segments, want 3", len(cached))
	}
}

func TestBatchSavePartialFailureForcesRefetch(t *testing.T) {
	mock := newMockServer()
	existing := []models.Segment{
		models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30),
	}
	for _, seg := range existing {
		mock.seed(seg)
	}

	ctrl, _, cache, _ := newTestController(t, mock)

	// Deletes will land, creates will not
	mock.mu.Lock()
	mock.failCreates = true
	mock.mu.Unlock()

	replacement := []models.Segment{
		models.NewSegment("item-1", models.SegmentTypeIntro, 5, 35),
	}

	created := ctrl.BatchSaveSegments(context.Background(), "item-1", existing, replacement)

	if len(created) != 0 {
		t.Fatalf("expected no created segments, got %d", len(created))
	}
	if _, found := cache.Get("item-1"); found {
		t.Error("cache entry should be invalidated after a partial batch failure")
	}
}

func TestDeleteSegmentOptimisticRollback(t *testing.T) {
	mock := newMockServer()
	seg := models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)
	mock.seed(seg)

	ctrl, _, cache, _ := newTestController(t, mock)

	// Prime the cache with the confirmed server state
	before := ctrl.GetSegmentsByID(context.Background(), "item-1")
	if len(before) != 1 {
		t.Fatalf("expected 1 segment before delete, got %d", len(before))
	}

	mock.mu.Lock()
	mock.failDeletes = true
	mock.mu.Unlock()

	if ok := ctrl.DeleteSegment(context.Background(), before[0]); ok {
		t.Fatal("delete should have failed")
	}

	restored, found := cache.Get("item-1")
	if !found {
		t.Fatal("cache entry should have been restored, not invalidated")
	}
	if len(restored) != 1 || restored[0].ID != before[0].ID {
		t.Errorf("cache was not rolled back to the pre-delete snapshot")
	}
}

func TestDeleteSegmentSuccess(t *testing.T) {
	mock := newMockServer()
	seg := models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)
	mock.seed(seg)

	ctrl, _, _, _ := newTestController(t, mock)

	fetched := ctrl.GetSegmentsByID(context.Background(), "item-1")
	if ok := ctrl.DeleteSegment(context.Background(), fetched[0]); !ok {
		t.Fatal("delete should have succeeded")
	}
	if n := mock.count("item-1"); n != 0 {
		t.Errorf("server still holds %d segments", n)
	}
}

func TestUpdateSegmentJournalsAndResolves(t *testing.T) {
	mock := newMockServer()
	old := models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)
	mock.seed(old)

	ctrl, _, _, db := newTestController(t, mock)

	new := models.NewSegment("item-1", models.SegmentTypeIntro, 5, 35)
	created, err := ctrl.UpdateSegment(context.Background(), old, new)
	if err != nil {
		t.Fatalf("UpdateSegment failed: %v", err)
	}
	if created.Start != 5 || created.End != 35 {
		t.Errorf("created bounds = %v..%v, want 5..35", created.Start, created.End)
	}

	entries, err := db.GetAllEntries()
	if err != nil {
		t.Fatalf("failed to read journal: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(entries))
	}
	if entries[0].Phase != models.UpdatePhaseRecreated {
		t.Errorf("journal phase = %s, want recreated", entries[0].Phase)
	}

	if n := mock.count("item-1"); n != 1 {
		t.Errorf("server holds %d segments, want 1", n)
	}
}

func TestUpdateSegmentCompensatesLostCreate(t *testing.T) {
	mock := newMockServer()
	old := models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)
	mock.seed(old)

	ctrl, compensate, _, db := newTestController(t, mock)

	mock.mu.Lock()
	mock.failCreates = true
	mock.mu.Unlock()

	new := models.NewSegment("item-1", models.SegmentTypeIntro, 5, 35)
	if _, err := ctrl.UpdateSegment(context.Background(), old, new); err == nil {
		t.Fatal("update should have failed on the create half")
	}

	// The old segment is gone and the new one never landed
	if n := mock.count("item-1"); n != 0 {
		t.Fatalf("server holds %d segments mid-failure, want 0", n)
	}

	entries, _ := db.GetUnresolvedEntries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 unresolved journal entry, got %d", len(entries))
	}
	if entries[0].Phase != models.UpdatePhaseFailed {
		t.Errorf("journal phase = %s, want failed", entries[0].Phase)
	}

	// Server recovers; compensation replays the create
	mock.mu.Lock()
	mock.failCreates = false
	mock.mu.Unlock()

	if err := compensate.Run(context.Background()); err != nil {
		t.Fatalf("compensation failed: %v", err)
	}

	if n := mock.count("item-1"); n != 1 {
		t.Errorf("server holds %d segments after compensation, want 1", n)
	}
	unresolved, _ := db.GetUnresolvedEntries()
	if len(unresolved) != 0 {
		t.Errorf("%d journal entries still unresolved", len(unresolved))
	}
}

func TestUpdateSegmentAbortsWhenDeleteFails(t *testing.T) {
	mock := newMockServer()
	old := models.NewSegment("item-1", models.SegmentTypeIntro, 0, 30)
	mock.seed(old)

	ctrl, _, _, db := newTestController(t, mock)

	mock.mu.Lock()
	mock.failDeletes = true
	mock.mu.Unlock()

	new := models.NewSegment("item-1", models.SegmentTypeIntro, 5, 35)
	if _, err := ctrl.UpdateSegment(context.Background(), old, new); err == nil {
		t.Fatal("update should have failed on the delete half")
	}

	// Nothing changed server-side, so nothing is left to compensate
	if n := mock.count("item-1"); n != 1 {
		t.Errorf("server holds %d segments, want the untouched original", n)
	}
	entries, _ := db.GetAllEntries()
	if len(entries) != 0 {
		t.Errorf("aborted update left %d journal entries", len(entries))
	}
}
