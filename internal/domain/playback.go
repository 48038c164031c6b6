package domain

import "time"

type PlaybackAction string

const (
	ActionPlay  PlaybackAction = "play"
	ActionPause PlaybackAction = "pause"
	ActionSeek  PlaybackAction = "seek"
)

func (a PlaybackAction) Valid() bool {
	switch a {
	case ActionPlay, ActionPause, ActionSeek:
		return true
	}
	return false
}

// PlaybackState is the authoritative playback record as of LastUpdated.
// The live position is never stored; use CurrentPosition.
type PlaybackState struct {
	IsPlaying     bool
	ReferenceTime float64
	LastUpdated   time.Time
}

func NewPlaybackState(now time.Time) PlaybackState {
	return PlaybackState{LastUpdated: now}
}

func (p *PlaybackState) Play(at float64, now time.Time) {
	p.set(true, at, now)
}

func (p *PlaybackState) Pause(at float64, now time.Time) {
	p.set(false, at, now)
}

func (p *PlaybackState) Seek(at float64, now time.Time) {
	p.set(p.IsPlaying, at, now)
}

// Reset returns the state to paused at zero.
func (p *PlaybackState) Reset(now time.Time) {
	p.set(false, 0, now)
}

func (p *PlaybackState) Apply(action PlaybackAction, at float64, now time.Time) {
	switch action {
	case ActionPlay:
		p.Play(at, now)
	case ActionPause:
		p.Pause(at, now)
	case ActionSeek:
		p.Seek(at, now)
	}
}

func (p *PlaybackState) set(isPlaying bool, at float64, now time.Time) {
	if at < 0 {
		at = 0
	}

	p.IsPlaying = isPlaying
	p.ReferenceTime = at
	p.LastUpdated = now
}

// CurrentPosition extrapolates the position at now from the last update.
func (p PlaybackState) CurrentPosition(now time.Time) float64 {
	if !p.IsPlaying {
		return p.ReferenceTime
	}

	elapsed := now.Sub(p.LastUpdated).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	return p.ReferenceTime + elapsed
}

// Action is the sync action describing the current state.
func (p PlaybackState) Action() PlaybackAction {
	if p.IsPlaying {
		return ActionPlay
	}
	return ActionPause
}
