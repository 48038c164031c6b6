package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := New(10, 20)

	assert.True(t, rl.Allow("1.2.3.4"), "first request should be allowed")
	assert.True(t, rl.Allow("5.6.7.8"), "different key should be allowed")
}

func TestRateLimiter_Burst(t *testing.T) {
	rl := New(5, 10)

	allowed := 0
	for i := 0; i < 20; i++ {
		if rl.Allow("10.0.0.1") {
			allowed++
		}
	}

	assert.GreaterOrEqual(t, allowed, 10)
	assert.Less(t, allowed, 20, "rate limiter should have blocked some requests")
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := New(1, 1)
	rl.Allow("a")
	rl.Allow("b")

	assert.Equal(t, 0, rl.evict(time.Now().Add(-time.Hour)))
	assert.Equal(t, 2, rl.evict(time.Now().Add(time.Hour)))
}

func TestRateLimiter_RunStops(t *testing.T) {
	rl := New(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimiter_ZeroRateDisables(t *testing.T) {
	for _, rps := range []float64{0, -1} {
		rl := New(rps, 1)
		for i := 0; i < 5; i++ {
			assert.True(t, rl.Allow("1.2.3.4"), "rps=%v request %d", rps, i)
		}
	}
}
