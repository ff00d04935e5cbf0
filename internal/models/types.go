package models

// SegmentType represents the kind of time range a segment marks
type SegmentType string

const (
	SegmentTypeIntro      SegmentType = "intro"
	SegmentTypeOutro      SegmentType = "outro"
	SegmentTypePreview    SegmentType = "preview"
	SegmentTypeRecap      SegmentType = "recap"
	SegmentTypeCommercial SegmentType = "commercial"
	SegmentTypeUnknown    SegmentType = "unknown"
)

// KnownSegmentTypes lists every type the server accepts
var KnownSegmentTypes = []SegmentType{
	SegmentTypeIntro,
	SegmentTypeOutro,
	SegmentTypePreview,
	SegmentTypeRecap,
	SegmentTypeCommercial,
	SegmentTypeUnknown,
}

// IsKnownSegmentType checks if t is one of the accepted segment types
func IsKnownSegmentType(t SegmentType) bool {
	for _, known := range KnownSegmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// UpdatePhase represents the progress of a delete-then-create segment update
type UpdatePhase string

const (
	UpdatePhasePending   UpdatePhase = "pending"   // Journaled, nothing sent yet
	UpdatePhaseDeleted   UpdatePhase = "deleted"   // Old segment deleted server-side
	UpdatePhaseRecreated UpdatePhase = "recreated" // New segment created, update complete
	UpdatePhaseFailed    UpdatePhase = "failed"    // Create failed after delete, needs compensation
)

// MediaType represents the catalog type of a media item
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeEpisode MediaType = "episode"
	MediaTypeSeries  MediaType = "series"
	MediaTypeTrack   MediaType = "track"
	MediaTypeAlbum   MediaType = "album"
	MediaTypeArtist  MediaType = "artist"
)
