package playback

import (
	"sync"

	"github.com/amaumene/segmentarr/internal/models"
)

// SessionState represents the evaluation progress of one playback session
type SessionState string

const (
	StateUnevaluated SessionState = "unevaluated"
	StateEvaluating  SessionState = "evaluating"
	StateDirectPlay  SessionState = "direct_play"
	StateTranscoded  SessionState = "transcoded"
)

// Session tracks the playback strategy decision for one media source
type Session struct {
	mu       sync.Mutex
	prober   Prober
	state    SessionState
	sourceID string
	result   Compatibility
}

// NewSession creates a session in the unevaluated state
func NewSession(prober Prober) *Session {
	return &Session{
		prober: prober,
		state:  StateUnevaluated,
	}
}

// State returns the current session state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the last compatibility decision
func (s *Session) Result() Compatibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Evaluate runs the compatibility check and settles the session on
// direct play or transcoding. Re-evaluating the same source returns the
// settled decision; a different source restarts the evaluation.
func (s *Session) Evaluate(source *models.MediaSource) Compatibility {
	s.mu.Lock()
	defer s.mu.Unlock()

	if source != nil && s.sourceID == source.ID &&
		(s.state == StateDirectPlay || s.state == StateTranscoded) {
		return s.result
	}

	s.state = StateEvaluating
	s.result = CheckDirectPlay(source, s.prober)
	if source != nil {
		s.sourceID = source.ID
	} else {
		s.sourceID = ""
	}

	if s.result.CanDirectPlay {
		s.state = StateDirectPlay
	} else {
		s.state = StateTranscoded
	}

	return s.result
}
