package playback

import (
	"strings"
	"testing"

	"github.com/amaumene/segmentarr/internal/models"
)

// recordingProber counts probe calls so tests can assert on evaluation
// order and cache behaviour
type recordingProber struct {
	containerCalls []string
	codecCalls     []string
	denyCodecs     map[string]bool
}

func (p *recordingProber) SupportsContainer(container string) bool {
	p.containerCalls = append(p.containerCalls, container)
	return true
}

func (p *recordingProber) SupportsCodec(codec string) bool {
	p.codecCalls = append(p.codecCalls, codec)
	return !p.denyCodecs[strings.ToLower(codec)]
}

func TestCheckDirectPlayNilSource(t *testing.T) {
	result := CheckDirectPlay(nil, &StaticProber{})
	if result.CanDirectPlay {
		t.Error("nil source must not be direct-playable")
	}
	if !strings.Contains(result.Reason, "unavailable") {
		t.Errorf("reason %q should mention unavailability", result.Reason)
	}
}

func TestCheckDirectPlayUnsupportedContainer(t *testing.T) {
	prober := &recordingProber{}
	source := &models.MediaSource{Container: "avi", VideoCodec: "h264", AudioCodec: "aac"}

	result := CheckDirectPlay(source, prober)
	if result.CanDirectPlay {
		t.Error("avi container should not direct play")
	}
	if !strings.Contains(result.Reason, "container") {
		t.Errorf("reason %q should mention the container", result.Reason)
	}
	// Short-circuit: codecs were never probed
	if len(prober.codecCalls) != 0 {
		t.Errorf("codec probes ran despite container failure: %v", prober.codecCalls)
	}
}

func TestCheckDirectPlayUnsupportedVideoCodec(t *testing.T) {
	prober := &recordingProber{}
	source := &models.MediaSource{Container: "mp4", VideoCodec: "mpeg2video", AudioCodec: "aac"}

	result := CheckDirectPlay(source, prober)
	if result.CanDirectPlay {
		t.Error("mpeg2video should not direct play")
	}
	if !strings.Contains(result.Reason, "video codec") {
		t.Errorf("reason %q should mention the video codec", result.Reason)
	}
	// Short-circuit: audio codec never reached
	for _, codec := range prober.codecCalls {
		if codec == "aac" {
			t.Error("audio codec was probed despite video failure")
		}
	}
}

func TestCheckDirectPlayUnsupportedAudioCodec(t *testing.T) {
	source := &models.MediaSource{Container: "mp4", VideoCodec: "h264", AudioCodec: "truehd"}

	result := CheckDirectPlay(source, &recordingProber{})
	if result.CanDirectPlay {
		t.Error("truehd should not direct play")
	}
	if !strings.Contains(result.Reason, "audio codec") {
		t.Errorf("reason %q should mention the audio codec", result.Reason)
	}
}

func TestCheckDirectPlayProbeDenies(t *testing.T) {
	// Allow-listed codec that the runtime environment cannot decode
	prober := &recordingProber{denyCodecs: map[string]bool{"av1": true}}
	source := &models.MediaSource{Container: "mp4", VideoCodec: "av1", AudioCodec: "aac"}

	result := CheckDirectPlay(source, prober)
	if result.CanDirectPlay {
		t.Error("probe denial should block direct play")
	}
	if !strings.Contains(result.Reason, "video codec") {
		t.Errorf("reason %q should mention the video codec", result.Reason)
	}
}

func TestCheckDirectPlaySupported(t *testing.T) {
	source := &models.MediaSource{Container: "mp4", VideoCodec: "H264", AudioCodec: "AAC"}

	result := CheckDirectPlay(source, &recordingProber{})
	if !result.CanDirectPlay {
		t.Errorf("h264/aac in mp4 should direct play, got reason %q", result.Reason)
	}
}

func TestCachedProberProbesOncePerCodec(t *testing.T) {
	inner := &recordingProber{}
	cached := NewCachedProber(inner)

	cached.SupportsCodec("h264")
	cached.SupportsCodec("H264")
	cached.SupportsCodec("h264")

	if len(inner.codecCalls) != 1 {
		t.Errorf("expected 1 probe for case-variants of the same codec, got %d", len(inner.codecCalls))
	}

	cached.Clear()
	cached.SupportsCodec("h264")
	if len(inner.codecCalls) != 2 {
		t.Errorf("expected a fresh probe after Clear, got %d calls", len(inner.codecCalls))
	}
}

func TestSessionStateMachine(t *testing.T) {
	session := NewSession(&StaticProber{})
	if session.State() != StateUnevaluated {
		t.Fatalf("new session state = %s, want unevaluated", session.State())
	}

	direct := &models.MediaSource{ID: "src-1", Container: "mp4", VideoCodec: "h264", AudioCodec: "aac"}
	result := session.Evaluate(direct)
	if !result.CanDirectPlay || session.State() != StateDirectPlay {
		t.Errorf("mp4/h264/aac should settle on direct play, state=%s", session.State())
	}

	// Same source: decision is settled, no re-evaluation
	if again := session.Evaluate(direct); again != result {
		t.Error("re-evaluating the same source should return the settled decision")
	}

	// Different source restarts the evaluation
	transcoded := &models.MediaSource{ID: "src-2", Container: "avi", VideoCodec: "h264"}
	result = session.Evaluate(transcoded)
	if result.CanDirectPlay || session.State() != StateTranscoded {
		t.Errorf("avi source should settle on transcoding, state=%s", session.State())
	}
}
