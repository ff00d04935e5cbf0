// Package importer parses clipboard-JSON marker payloads produced by
// external segment detection tools into domain segments.
package importer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/amaumene/segmentarr/internal/models"
)

// Result is the outcome of one import. Unknown marker types are reported,
// never silently dropped.
type Result struct {
	Segments     []models.Segment `json:"segments"`
	UnknownTypes []string         `json:"unknownTypes"`
	Skipped      []string         `json:"skipped"`
}

// eventPayload is the first tolerated shape: an events array with
// millisecond timestamps and type tags
type eventPayload struct {
	Events []eventMarker `json:"events"`
}

type eventMarker struct {
	EventType string  `json:"eventType"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// markerRange is the second tolerated shape: a flat map of named markers
// with second-granularity bounds. End may be absent for credits markers.
type markerRange struct {
	Start float64  `json:"start"`
	End   *float64 `json:"end"`
}

// markerTypes maps external tags to the segment type enum. Credits tags
// map to outro, the segment that covers end credits.
var markerTypes = map[string]models.SegmentType{
	"intro":      models.SegmentTypeIntro,
	"outro":      models.SegmentTypeOutro,
	"credits":    models.SegmentTypeOutro,
	"endcredits": models.SegmentTypeOutro,
	"preview":    models.SegmentTypePreview,
	"recap":      models.SegmentTypeRecap,
	"commercial": models.SegmentTypeCommercial,
}

// creditsTags are the marker names allowed to omit an end bound
var creditsTags = map[string]bool{
	"outro":      true,
	"credits":    true,
	"endcredits": true,
}

// Parse converts a clipboard payload into segments for one media item.
// durationSeconds clamps open-ended credits markers; pass 0 when unknown.
func Parse(itemID string, data []byte, durationSeconds float64) (Result, error) {
	if itemID == "" {
		return Result{}, fmt.Errorf("item ID is required")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Result{}, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	if raw, ok := probe["events"]; ok {
		return parseEvents(itemID, raw)
	}
	return parseMarkerMap(itemID, probe, durationSeconds)
}

// parseEvents handles the events-array shape (millisecond timestamps)
func parseEvents(itemID string, raw json.RawMessage) (Result, error) {
	var events []eventMarker
	if err := json.Unmarshal(raw, &events); err != nil {
		return Result{}, fmt.Errorf("events is not an array of markers: %w", err)
	}

	var result Result
	for i, ev := range events {
		segType, ok := markerTypes[normalizeTag(ev.EventType)]
		if !ok {
			result.UnknownTypes = append(result.UnknownTypes, ev.EventType)
			continue
		}

		seg := models.NewSegment(itemID, segType, ev.Start/1000, ev.End/1000)
		if err := seg.Validate(); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("event %d (%s): %v", i, ev.EventType, err))
			continue
		}
		result.Segments = append(result.Segments, seg)
	}

	sortSegments(result.Segments)
	return result, nil
}

// parseMarkerMap handles the flat named-marker shape (second granularity)
func parseMarkerMap(itemID string, markers map[string]json.RawMessage, durationSeconds float64) (Result, error) {
	var result Result

	names := make([]string, 0, len(markers))
	for name := range markers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		segType, ok := markerTypes[normalizeTag(name)]
		if !ok {
			result.UnknownTypes = append(result.UnknownTypes, name)
			continue
		}

		var rng markerRange
		if err := json.Unmarshal(markers[name], &rng); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("marker %q: not a start/end object", name))
			continue
		}

		end := 0.0
		switch {
		case rng.End != nil:
			end = *rng.End
		case creditsTags[normalizeTag(name)] && durationSeconds > 0:
			// Open-ended credits run to the end of the media
			end = durationSeconds
		default:
			result.Skipped = append(result.Skipped, fmt.Sprintf("marker %q: missing end and media duration is unknown", name))
			continue
		}

		seg := models.NewSegment(itemID, segType, rng.Start, end)
		if err := seg.Validate(); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("marker %q: %v", name, err))
			continue
		}
		result.Segments = append(result.Segments, seg)
	}

	sortSegments(result.Segments)
	return result, nil
}

// normalizeTag lower-cases a tag and strips separators so "End Credits",
// "end_credits" and "endcredits" all match
func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.ReplaceAll(tag, " ", "")
	tag = strings.ReplaceAll(tag, "_", "")
	tag = strings.ReplaceAll(tag, "-", "")
	return tag
}

// sortSegments orders segments by start time
func sortSegments(segments []models.Segment) {
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
}
