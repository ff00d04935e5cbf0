package playback

import (
	"fmt"
	"strings"

	"github.com/amaumene/segmentarr/internal/models"
	gocache "github.com/patrickmn/go-cache"
)

// Compatibility is the direct-play decision for one media source
type Compatibility struct {
	CanDirectPlay bool   `json:"canDirectPlay"`
	Reason        string `json:"reason"`
}

// Prober answers runtime decode-capability questions. The static allow
// tables below are consulted first; the prober models what the playback
// environment actually decodes.
type Prober interface {
	SupportsContainer(container string) bool
	SupportsCodec(codec string) bool
}

// Containers the direct-play path will consider at all
var supportedContainers = map[string]bool{
	"mp4":  true,
	"m4v":  true,
	"mov":  true,
	"webm": true,
	"opus": true,
	"ogg":  true,
	"mp3":  true,
	"aac":  true,
	"m4a":  true,
	"flac": true,
	"wav":  true,
}

// Video codecs eligible for direct play
var supportedVideoCodecs = map[string]bool{
	"h264": true,
	"hevc": true,
	"h265": true,
	"vp8":  true,
	"vp9":  true,
	"av1":  true,
}

// Audio codecs eligible for direct play
var supportedAudioCodecs = map[string]bool{
	"aac":    true,
	"mp3":    true,
	"opus":   true,
	"vorbis": true,
	"flac":   true,
	"ac3":    true,
	"eac3":   true,
}

// normalize lower-cases and trims a container or codec tag
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckDirectPlay decides whether a media source can be served as the
// original byte stream. Evaluation order is fixed and short-circuits at
// the first failure: container, then video codec, then audio codec.
func CheckDirectPlay(source *models.MediaSource, prober Prober) Compatibility {
	if source == nil {
		return Compatibility{CanDirectPlay: false, Reason: "media source is unavailable"}
	}

	container := normalize(source.Container)
	if container == "" || !supportedContainers[container] || !prober.SupportsContainer(container) {
		return Compatibility{
			CanDirectPlay: false,
			Reason:        fmt.Sprintf("container %q is not supported", source.Container),
		}
	}

	if videoCodec := normalize(source.VideoCodec); videoCodec != "" {
		if !supportedVideoCodecs[videoCodec] || !prober.SupportsCodec(videoCodec) {
			return Compatibility{
				CanDirectPlay: false,
				Reason:        fmt.Sprintf("video codec %q is not supported", source.VideoCodec),
			}
		}
	}

	if audioCodec := normalize(source.AudioCodec); audioCodec != "" {
		if !supportedAudioCodecs[audioCodec] || !prober.SupportsCodec(audioCodec) {
			return Compatibility{
				CanDirectPlay: false,
				Reason:        fmt.Sprintf("audio codec %q is not supported", source.AudioCodec),
			}
		}
	}

	return Compatibility{CanDirectPlay: true, Reason: "direct play supported"}
}

// StaticProber is a table-driven prober for environments without a live
// capability probe. An empty table means "everything the allow-list
// already accepted is fine".
type StaticProber struct {
	Containers map[string]bool
	Codecs     map[string]bool
}

// SupportsContainer checks the container table, defaulting to true when empty
func (p *StaticProber) SupportsContainer(container string) bool {
	if len(p.Containers) == 0 {
		return true
	}
	return p.Containers[normalize(container)]
}

// SupportsCodec checks the codec table, defaulting to true when empty
func (p *StaticProber) SupportsCodec(codec string) bool {
	if len(p.Codecs) == 0 {
		return true
	}
	return p.Codecs[normalize(codec)]
}

// CachedProber memoizes another prober's answers for the session lifetime.
// Keys are normalized case-insensitively; entries only leave the cache via
// an explicit Clear.
type CachedProber struct {
	inner Prober
	cache *gocache.Cache
}

// NewCachedProber creates a caching decorator around a prober
func NewCachedProber(inner Prober) *CachedProber {
	return &CachedProber{
		inner: inner,
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// SupportsContainer checks the cache before probing
func (p *CachedProber) SupportsContainer(container string) bool {
	key := "container:" + normalize(container)
	if v, found := p.cache.Get(key); found {
		return v.(bool)
	}
	supported := p.inner.SupportsContainer(container)
	p.cache.Set(key, supported, gocache.NoExpiration)
	return supported
}

// SupportsCodec checks the cache before probing
func (p *CachedProber) SupportsCodec(codec string) bool {
	key := "codec:" + normalize(codec)
	if v, found := p.cache.Get(key); found {
		return v.(bool)
	}
	supported := p.inner.SupportsCodec(codec)
	p.cache.Set(key, supported, gocache.NoExpiration)
	return supported
}

// Clear drops every cached probe result
func (p *CachedProber) Clear() {
	p.cache.Flush()
}
