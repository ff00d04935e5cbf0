package mediaserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amaumene/segmentarr/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// segmentDTO is the wire representation of a segment. The server stores
// offsets in 100ns ticks; conversion to seconds happens here and nowhere else.
type segmentDTO struct {
	ID         string `json:"Id"`
	ItemID     string `json:"ItemId"`
	Type       string `json:"Type"`
	StartTicks int64  `json:"StartTicks"`
	EndTicks   int64  `json:"EndTicks"`
}

// segmentListDTO wraps the server's segment list response
type segmentListDTO struct {
	Items            []segmentDTO `json:"Items"`
	TotalRecordCount int          `json:"TotalRecordCount"`
}

// toDTO converts a domain segment to its wire representation
func toDTO(seg models.Segment) segmentDTO {
	return segmentDTO{
		ID:         seg.ID.String(),
		ItemID:     seg.ItemID,
		Type:       wireSegmentType(seg.Type),
		StartTicks: models.SecondsToTicks(seg.Start),
		EndTicks:   models.SecondsToTicks(seg.End),
	}
}

// fromDTO converts a wire segment to the domain representation
func fromDTO(dto segmentDTO) models.Segment {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		id = uuid.Nil
	}
	return models.Segment{
		ID:     id,
		ItemID: dto.ItemID,
		Type:   parseWireSegmentType(dto.Type),
		Start:  models.TicksToSeconds(dto.StartTicks),
		End:    models.TicksToSeconds(dto.EndTicks),
	}
}

// wireSegmentType maps a domain segment type to the server's capitalized form
func wireSegmentType(t models.SegmentType) string {
	if t == "" {
		t = models.SegmentTypeUnknown
	}
	return strings.ToUpper(string(t[0])) + string(t[1:])
}

// parseWireSegmentType maps a server type tag back to the domain enum.
// Unrecognized tags collapse to unknown rather than failing the fetch.
func parseWireSegmentType(s string) models.SegmentType {
	t := models.SegmentType(strings.ToLower(s))
	if !models.IsKnownSegmentType(t) {
		return models.SegmentTypeUnknown
	}
	return t
}

// GetSegments fetches all segments for a media item
func (c *Client) GetSegments(ctx context.Context, itemID string) ([]models.Segment, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item ID is required")
	}

	var list segmentListDTO
	if err := c.doRequest(ctx, http.MethodGet, "/MediaSegments/"+itemID, nil, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to get segments: %w", err)
	}

	segments := make([]models.Segment, 0, len(list.Items))
	for _, dto := range list.Items {
		segments = append(segments, fromDTO(dto))
	}

	c.logger.WithFields(logrus.Fields{
		"item_id": itemID,
		"count":   len(segments),
	}).Debug("Fetched segments")

	return segments, nil
}

// CreateSegment persists a new segment, retrying transient failures
func (c *Client) CreateSegment(ctx context.Context, seg models.Segment) (models.Segment, error) {
	if err := seg.Validate(); err != nil {
		return models.Segment{}, fmt.Errorf("invalid segment: %w", err)
	}

	query := url.Values{}
	query.Set("providerId", "segmentarr")

	var created segmentDTO
	err := c.withRetry(ctx, "create segment", func() error {
		return c.doRequest(ctx, http.MethodPost, "/MediaSegments/"+seg.ItemID, query, toDTO(seg), &created)
	})
	if err != nil {
		return models.Segment{}, fmt.Errorf("failed to create segment: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"item_id":    seg.ItemID,
		"segment_id": created.ID,
		"type":       seg.Type,
	}).Debug("Created segment")

	return fromDTO(created), nil
}

// DeleteSegment removes a segment by ID, scoped to its item and type.
// A segment that is already gone counts as deleted.
func (c *Client) DeleteSegment(ctx context.Context, seg models.Segment) error {
	if seg.ID == uuid.Nil {
		return fmt.Errorf("segment is missing an ID")
	}
	if seg.ItemID == "" {
		return fmt.Errorf("segment is missing an item ID")
	}

	query := url.Values{}
	query.Set("itemId", seg.ItemID)
	if seg.Type != "" {
		query.Set("type", wireSegmentType(seg.Type))
	}

	err := c.withRetry(ctx, "delete segment", func() error {
		err := c.doRequest(ctx, http.MethodDelete, "/MediaSegments/"+seg.ID.String(), query, nil, nil)
		if IsNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete segment: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"item_id":    seg.ItemID,
		"segment_id": seg.ID.String(),
	}).Debug("Deleted segment")

	return nil
}
