package handlers

import (
	"net/http"

	"github.com/amaumene/segmentarr/internal/controllers"
	"github.com/amaumene/segmentarr/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	cache  *controllers.SegmentCache
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, cache *controllers.SegmentCache, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	JournalEntries  int `json:"journal_entries"`
	PendingUpdates  int `json:"pending_updates"`
	FailedUpdates   int `json:"failed_updates"`
	ResolvedUpdates int `json:"resolved_updates"`
	CachedItems     int `json:"cached_items"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.GetAllEntries()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read update journal")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		JournalEntries: len(entries),
		CachedItems:    h.cache.ItemCount(),
	}

	for _, entry := range entries {
		switch entry.Phase {
		case models.UpdatePhasePending, models.UpdatePhaseDeleted:
			response.PendingUpdates++
		case models.UpdatePhaseFailed:
			response.FailedUpdates++
		case models.UpdatePhaseRecreated:
			response.ResolvedUpdates++
		}
	}

	writeJSON(w, http.StatusOK, response)
}
