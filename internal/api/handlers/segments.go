package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/amaumene/segmentarr/internal/controllers"
	"github.com/amaumene/segmentarr/internal/importer"
	"github.com/amaumene/segmentarr/internal/models"
	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxImportBytes bounds clipboard payload size
const maxImportBytes = 1 << 20

// SegmentsHandler serves the segment CRUD surface for the editor frontend
type SegmentsHandler struct {
	ctrl   *controllers.SegmentController
	client *mediaserver.Client
	logger *logrus.Logger
}

// NewSegmentsHandler creates a new segments handler
func NewSegmentsHandler(ctrl *controllers.SegmentController, client *mediaserver.Client, logger *logrus.Logger) *SegmentsHandler {
	return &SegmentsHandler{
		ctrl:   ctrl,
		client: client,
		logger: logger,
	}
}

// segmentListResponse wraps a segment list
type segmentListResponse struct {
	Segments []models.Segment `json:"segments"`
}

// List handles GET /api/items/{id}/segments
func (h *SegmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	segments := h.ctrl.GetSegmentsByID(r.Context(), itemID)
	writeJSON(w, http.StatusOK, segmentListResponse{Segments: segments})
}

// createSegmentRequest is the body for segment creation
type createSegmentRequest struct {
	Type  models.SegmentType `json:"type"`
	Start float64            `json:"start"`
	End   float64            `json:"end"`
}

// Create handles POST /api/items/{id}/segments
func (h *SegmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	var req createSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	seg := models.NewSegment(itemID, req.Type, req.Start, req.End)
	created, err := h.ctrl.CreateSegment(r.Context(), seg)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Delete handles DELETE /api/items/{id}/segments/{segmentId}
func (h *SegmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	segmentID, err := uuid.Parse(r.PathValue("segmentId"))
	if err != nil {
		writeBadRequest(w, fmt.Errorf("invalid segment ID: %w", err))
		return
	}

	seg := models.Segment{
		ID:     segmentID,
		ItemID: itemID,
		Type:   models.SegmentType(r.URL.Query().Get("type")),
	}

	if ok := h.ctrl.DeleteSegment(r.Context(), seg); !ok {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "segment delete failed"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// batchSaveRequest is the body for a full-list replacement
type batchSaveRequest struct {
	Segments []createSegmentRequest `json:"segments"`
}

// BatchSave handles PUT /api/items/{id}/segments. The item's current
// segments are deleted and the submitted list is created in their place;
// the response holds only the segments that were actually created.
func (h *SegmentsHandler) BatchSave(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	var req batchSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	newSegments := make([]models.Segment, 0, len(req.Segments))
	for i, s := range req.Segments {
		seg := models.NewSegment(itemID, s.Type, s.Start, s.End)
		if err := seg.Validate(); err != nil {
			writeBadRequest(w, fmt.Errorf("segment %d rejected: %w", i, err))
			return
		}
		newSegments = append(newSegments, seg)
	}

	existing := h.ctrl.GetSegmentsByID(r.Context(), itemID)
	created := h.ctrl.BatchSaveSegments(r.Context(), itemID, existing, newSegments)

	status := http.StatusOK
	if len(created) < len(newSegments) {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, segmentListResponse{Segments: created})
}

// Import handles POST /api/items/{id}/segments/import. The body is the
// raw clipboard payload; parsed segments are returned for review together
// with any skipped or unknown markers, nothing is persisted here.
func (h *SegmentsHandler) Import(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeBadRequest(w, fmt.Errorf("failed to read payload: %w", err))
		return
	}

	duration, err := h.resolveDuration(r, itemID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"item_id": itemID,
			"error":   err.Error(),
		}).Debug("Media duration unavailable for import")
	}

	result, err := importer.Parse(itemID, body, duration)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"item_id":  itemID,
		"imported": len(result.Segments),
		"unknown":  len(result.UnknownTypes),
		"skipped":  len(result.Skipped),
	}).Info("Parsed clipboard import")

	writeJSON(w, http.StatusOK, result)
}

// resolveDuration takes the duration from the query string when present,
// otherwise asks the media server for the item runtime
func (h *SegmentsHandler) resolveDuration(r *http.Request, itemID string) (float64, error) {
	if raw := r.URL.Query().Get("duration"); raw != "" {
		duration, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return duration, nil
	}

	item, err := h.client.GetItem(r.Context(), itemID)
	if err != nil {
		return 0, err
	}
	return item.RuntimeSeconds(), nil
}
