package playback

// Player is the minimal surface of a playback pipeline whose observable
// state survives a track or strategy switch
type Player interface {
	Position() float64
	SetPosition(seconds float64)
	Volume() float64
	SetVolume(volume float64)
	Muted() bool
	SetMuted(muted bool)
	Paused() bool
	Play() error
}

// PlayerState is a snapshot of the four observable playback properties
type PlayerState struct {
	Position float64 `json:"position"`
	Volume   float64 `json:"volume"`
	Muted    bool    `json:"muted"`
	Paused   bool    `json:"paused"`
}

// CaptureState snapshots a player before its pipeline is torn down
func CaptureState(p Player) PlayerState {
	return PlayerState{
		Position: p.Position(),
		Volume:   p.Volume(),
		Muted:    p.Muted(),
		Paused:   p.Paused(),
	}
}

// RestoreState applies a snapshot onto a player once the new pipeline is
// ready. Volume is clamped to [0,1]; playback resumes only if the captured
// state was playing, and a rejected play call is swallowed.
func RestoreState(p Player, state PlayerState) {
	p.SetPosition(state.Position)
	p.SetVolume(clampVolume(state.Volume))
	p.SetMuted(state.Muted)

	if !state.Paused {
		_ = p.Play()
	}
}

// clampVolume forces a volume into the valid [0,1] range
func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
