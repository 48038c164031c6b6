// Package playersync holds the receiver side of the sync protocol: it turns a
// sync event into the position a local player should be at and decides
// whether a hard seek is needed.
package playersync

import (
	"math"
	"sync"
	"time"
)

const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
)

// SeekThreshold is the drift, in seconds, tolerated before a hard seek.
const SeekThreshold = 0.5

type Event struct {
	Action          string  `json:"action"`
	Time            float64 `json:"time"`
	ServerTimestamp int64   `json:"serverTimestamp"`
}

// Latency returns how long ago, in seconds, the event left the server.
// Clock skew can make it negative; it is clamped to zero.
func Latency(ev Event, localNow time.Time) float64 {
	latency := float64(localNow.UnixMilli()-ev.ServerTimestamp) / 1000
	if latency < 0 {
		return 0
	}

	return latency
}

// AdjustedTime is the event time moved forward by the transit latency while
// playing. Paused and seek events are applied as-is.
func AdjustedTime(ev Event, localNow time.Time) float64 {
	if ev.Action == ActionPlay {
		return ev.Time + Latency(ev, localNow)
	}

	return ev.Time
}

func NeedsSeek(localTime, adjustedTime float64) bool {
	return math.Abs(localTime-adjustedTime) > SeekThreshold
}

// Player is a minimal player model driven by wall-clock time.
type Player struct {
	mu        sync.Mutex
	playing   bool
	position  float64
	updatedAt time.Time
	clock     func() time.Time
}

func NewPlayer(clock func() time.Time) *Player {
	if clock == nil {
		clock = time.Now
	}

	return &Player{clock: clock, updatedAt: clock()}
}

func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.currentTime(p.clock())
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

func (p *Player) currentTime(now time.Time) float64 {
	if !p.playing {
		return p.position
	}

	return p.position + now.Sub(p.updatedAt).Seconds()
}

// Apply brings the player in line with ev and reports whether it had to
// hard-seek.
func (p *Player) Apply(ev Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock()
	current := p.currentTime(now)
	adjusted := AdjustedTime(ev, now)

	seeked := NeedsSeek(current, adjusted)
	if seeked {
		current = adjusted
	}

	switch ev.Action {
	case ActionPlay:
		p.playing = true
	case ActionPause:
		p.playing = false
	}

	p.position = current
	p.updatedAt = now

	return seeked
}

// Reset loads a new video: paused at zero.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false
	p.position = 0
	p.updatedAt = p.clock()
}
