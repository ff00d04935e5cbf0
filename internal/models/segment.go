package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Segment represents a labeled time range within a media item.
// Start and End are in seconds; conversion to server ticks happens
// at the API client boundary.
type Segment struct {
	ID     uuid.UUID   `json:"id"`
	ItemID string      `json:"itemId"`
	Type   SegmentType `json:"type"`
	Start  float64     `json:"start"`
	End    float64     `json:"end"`
}

// NewSegment creates a segment with a generated ID
func NewSegment(itemID string, segType SegmentType, start, end float64) Segment {
	return Segment{
		ID:     uuid.New(),
		ItemID: itemID,
		Type:   segType,
		Start:  start,
		End:    end,
	}
}

// Validate checks the segment invariants: identifiers present,
// non-negative bounds, start strictly before end
func (s Segment) Validate() error {
	if s.ItemID == "" {
		return fmt.Errorf("segment is missing an item ID")
	}
	if s.ID == uuid.Nil {
		return fmt.Errorf("segment is missing an ID")
	}
	if s.Start < 0 || s.End < 0 {
		return fmt.Errorf("segment bounds must be non-negative (start=%.3f end=%.3f)", s.Start, s.End)
	}
	if s.Start >= s.End {
		return fmt.Errorf("segment start must be before end (start=%.3f end=%.3f)", s.Start, s.End)
	}
	if s.Type == "" {
		return fmt.Errorf("segment is missing a type")
	}
	return nil
}

// MediaItem represents a catalog entry on the media server
type MediaItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         MediaType     `json:"type"`
	RuntimeTicks int64         `json:"runtimeTicks"`
	MediaSources []MediaSource `json:"mediaSources"`
}

// RuntimeSeconds returns the item duration in seconds, 0 when unknown
func (m MediaItem) RuntimeSeconds() float64 {
	if m.RuntimeTicks <= 0 {
		return 0
	}
	return TicksToSeconds(m.RuntimeTicks)
}

// MediaSource describes one playable stream of a media item
type MediaSource struct {
	ID         string `json:"id"`
	Container  string `json:"container"`
	VideoCodec string `json:"videoCodec"`
	AudioCodec string `json:"audioCodec"`
	Bitrate    int64  `json:"bitrate"`
}
