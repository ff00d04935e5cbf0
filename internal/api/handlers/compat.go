package handlers

import (
	"net/http"

	"github.com/amaumene/segmentarr/internal/playback"
	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/sirupsen/logrus"
)

// CompatHandler reports per-source playback strategy for a media item
type CompatHandler struct {
	client *mediaserver.Client
	prober playback.Prober
	logger *logrus.Logger
}

// NewCompatHandler creates a new compatibility handler
func NewCompatHandler(client *mediaserver.Client, prober playback.Prober, logger *logrus.Logger) *CompatHandler {
	return &CompatHandler{
		client: client,
		prober: prober,
		logger: logger,
	}
}

// sourceCompatibility is the decision for one media source plus the URL
// the frontend should play
type sourceCompatibility struct {
	SourceID      string `json:"sourceId"`
	Container     string `json:"container"`
	VideoCodec    string `json:"videoCodec,omitempty"`
	AudioCodec    string `json:"audioCodec,omitempty"`
	CanDirectPlay bool   `json:"canDirectPlay"`
	Reason        string `json:"reason"`
	StreamURL     string `json:"streamUrl"`
}

// compatResponse wraps the per-source decisions for one item
type compatResponse struct {
	ItemID  string                `json:"itemId"`
	Name    string                `json:"name"`
	Sources []sourceCompatibility `json:"sources"`
}

// ServeHTTP handles GET /api/items/{id}/compatibility
func (h *CompatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	item, err := h.client.GetItem(r.Context(), itemID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response := compatResponse{
		ItemID:  item.ID,
		Name:    item.Name,
		Sources: make([]sourceCompatibility, 0, len(item.MediaSources)),
	}

	for i := range item.MediaSources {
		source := &item.MediaSources[i]
		result := playback.CheckDirectPlay(source, h.prober)
		response.Sources = append(response.Sources, sourceCompatibility{
			SourceID:      source.ID,
			Container:     source.Container,
			VideoCodec:    source.VideoCodec,
			AudioCodec:    source.AudioCodec,
			CanDirectPlay: result.CanDirectPlay,
			Reason:        result.Reason,
			StreamURL:     h.client.StreamURL(item.ID, source.ID, result.CanDirectPlay),
		})
	}

	if len(item.MediaSources) == 0 {
		// No sources at all behaves like a missing source
		result := playback.CheckDirectPlay(nil, h.prober)
		response.Sources = append(response.Sources, sourceCompatibility{
			CanDirectPlay: result.CanDirectPlay,
			Reason:        result.Reason,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
