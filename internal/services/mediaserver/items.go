package mediaserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amaumene/segmentarr/internal/models"
)

// itemDTO is the wire representation of a catalog entry
type itemDTO struct {
	ID           string           `json:"Id"`
	Name         string           `json:"Name"`
	Type         string           `json:"Type"`
	RunTimeTicks int64            `json:"RunTimeTicks"`
	MediaSources []mediaSourceDTO `json:"MediaSources"`
}

// itemListDTO wraps the server's item list response
type itemListDTO struct {
	Items            []itemDTO `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
}

// mediaSourceDTO describes one playable stream of an item
type mediaSourceDTO struct {
	ID           string           `json:"Id"`
	Container    string           `json:"Container"`
	Bitrate      int64            `json:"Bitrate"`
	MediaStreams []mediaStreamDTO `json:"MediaStreams"`
}

// mediaStreamDTO is a single stream (video, audio, subtitle) within a source
type mediaStreamDTO struct {
	Type  string `json:"Type"`
	Codec string `json:"Codec"`
}

// itemFromDTO converts a wire item to the domain representation. The first
// video and audio stream of each source decide its codec pair.
func itemFromDTO(dto itemDTO) models.MediaItem {
	item := models.MediaItem{
		ID:           dto.ID,
		Name:         dto.Name,
		Type:         models.MediaType(strings.ToLower(dto.Type)),
		RuntimeTicks: dto.RunTimeTicks,
	}

	for _, src := range dto.MediaSources {
		source := models.MediaSource{
			ID:        src.ID,
			Container: src.Container,
			Bitrate:   src.Bitrate,
		}
		for _, stream := range src.MediaStreams {
			switch strings.ToLower(stream.Type) {
			case "video":
				if source.VideoCodec == "" {
					source.VideoCodec = stream.Codec
				}
			case "audio":
				if source.AudioCodec == "" {
					source.AudioCodec = stream.Codec
				}
			}
		}
		item.MediaSources = append(item.MediaSources, source)
	}

	return item
}

// GetItem fetches a single media item with its media sources
func (c *Client) GetItem(ctx context.Context, itemID string) (models.MediaItem, error) {
	if itemID == "" {
		return models.MediaItem{}, fmt.Errorf("item ID is required")
	}

	var dto itemDTO
	if err := c.doRequest(ctx, http.MethodGet, "/Items/"+itemID, nil, nil, &dto); err != nil {
		return models.MediaItem{}, fmt.Errorf("failed to get item: %w", err)
	}

	return itemFromDTO(dto), nil
}

// GetItems lists the children of a library folder, optionally filtered by type
func (c *Client) GetItems(ctx context.Context, parentID string, mediaTypes []models.MediaType) ([]models.MediaItem, error) {
	query := url.Values{}
	if parentID != "" {
		query.Set("parentId", parentID)
	}
	if len(mediaTypes) > 0 {
		types := make([]string, 0, len(mediaTypes))
		for _, t := range mediaTypes {
			types = append(types, string(t))
		}
		query.Set("includeItemTypes", strings.Join(types, ","))
	}

	var list itemListDTO
	if err := c.doRequest(ctx, http.MethodGet, "/Items", query, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]models.MediaItem, 0, len(list.Items))
	for _, dto := range list.Items {
		items = append(items, itemFromDTO(dto))
	}
	return items, nil
}

// StreamURL builds the playback URL for a media source. Direct play maps
// to the original byte stream, everything else to the HLS master playlist.
func (c *Client) StreamURL(itemID, sourceID string, direct bool) string {
	if direct {
		return fmt.Sprintf("%s/Videos/%s/stream?mediaSourceId=%s&static=true", c.baseURL, itemID, url.QueryEscape(sourceID))
	}
	return fmt.Sprintf("%s/Videos/%s/master.m3u8?mediaSourceId=%s", c.baseURL, itemID, url.QueryEscape(sourceID))
}

// ImageURL builds the artwork URL for an item. Kind is the server-side
// image tag (Primary, Backdrop, Thumb).
func (c *Client) ImageURL(itemID, kind string) string {
	if kind == "" {
		kind = "Primary"
	}
	return fmt.Sprintf("%s/Items/%s/Images/%s", c.baseURL, itemID, kind)
}
