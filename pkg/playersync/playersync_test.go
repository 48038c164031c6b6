package playersync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestAdjustedTime(t *testing.T) {
	now := time.UnixMilli(1_700_000_010_000)

	play := Event{Action: ActionPlay, Time: 12, ServerTimestamp: now.UnixMilli() - 300}
	assert.InDelta(t, 12.3, AdjustedTime(play, now), 1e-9)

	pause := Event{Action: ActionPause, Time: 12, ServerTimestamp: now.UnixMilli() - 300}
	assert.Equal(t, 12.0, AdjustedTime(pause, now))

	seek := Event{Action: ActionSeek, Time: 40, ServerTimestamp: now.UnixMilli() - 300}
	assert.Equal(t, 40.0, AdjustedTime(seek, now))

	skewed := Event{Action: ActionPlay, Time: 5, ServerTimestamp: now.UnixMilli() + 2000}
	assert.Equal(t, 5.0, AdjustedTime(skewed, now))
}

func TestNeedsSeek(t *testing.T) {
	assert.False(t, NeedsSeek(10, 10.4))
	assert.False(t, NeedsSeek(10, 10.5))
	assert.True(t, NeedsSeek(10, 10.51))
	assert.True(t, NeedsSeek(10.6, 10))
}

func TestPlayerApply(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	p := NewPlayer(clock.Now)

	seeked := p.Apply(Event{Action: ActionPlay, Time: 10, ServerTimestamp: clock.now.UnixMilli() - 200})
	assert.True(t, seeked)
	assert.True(t, p.IsPlaying())
	assert.InDelta(t, 10.2, p.CurrentTime(), 1e-9)

	clock.Advance(2 * time.Second)
	assert.InDelta(t, 12.2, p.CurrentTime(), 1e-9)

	// within the hysteresis band: no seek, natural playback continues
	seeked = p.Apply(Event{Action: ActionPlay, Time: 12.0, ServerTimestamp: clock.now.UnixMilli()})
	assert.False(t, seeked)
	assert.InDelta(t, 12.2, p.CurrentTime(), 1e-9)

	seeked = p.Apply(Event{Action: ActionPause, Time: 30, ServerTimestamp: clock.now.UnixMilli()})
	assert.True(t, seeked)
	assert.False(t, p.IsPlaying())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 30.0, p.CurrentTime())

	seeked = p.Apply(Event{Action: ActionSeek, Time: 31, ServerTimestamp: clock.now.UnixMilli()})
	assert.True(t, seeked)
	assert.False(t, p.IsPlaying(), "seek keeps the paused state")

	p.Reset()
	assert.Equal(t, 0.0, p.CurrentTime())
}
