package reaper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/stretchr/testify/assert"
)

type fakeRoomService struct {
	mu     sync.Mutex
	rooms  map[string]bool
	errs   map[string]error
	sweeps int
}

func (f *fakeRoomService) ListRoomIds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++

	ids := make([]string, 0, len(f.rooms))
	for id := range f.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeRoomService) ReapRoom(_ context.Context, params *room.ReapRoomParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.errs[params.RoomId]; err != nil {
		return false, err
	}

	expired, ok := f.rooms[params.RoomId]
	if !ok {
		return false, room.ErrRoomNotFound
	}
	if expired {
		delete(f.rooms, params.RoomId)
	}
	return expired, nil
}

func TestSweep(t *testing.T) {
	f := &fakeRoomService{
		rooms: map[string]bool{"A": true, "B": false, "C": true, "D": true},
		errs:  map[string]error{"D": errors.New("boom")},
	}
	s := NewService(f, &Config{Interval: time.Hour, MaxAge: 24 * time.Hour}, slog.Default())

	assert.Equal(t, 2, s.Sweep(context.Background()))
	assert.Equal(t, 0, s.Sweep(context.Background()))
	assert.Contains(t, f.rooms, "B")
}

func TestRunStopsOnCancel(t *testing.T) {
	f := &fakeRoomService{rooms: map[string]bool{"A": true}}
	s := NewService(f, &Config{Interval: 5 * time.Millisecond, MaxAge: time.Hour}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.rooms) == 0 && f.sweeps > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
