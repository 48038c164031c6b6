package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/internal/service/room"
)

type iRoomService interface {
	ListRoomIds() []string
	ReapRoom(context.Context, *room.ReapRoomParams) (bool, error)
}

type Config struct {
	Interval time.Duration
	MaxAge   time.Duration
}

type service struct {
	roomService iRoomService
	interval    time.Duration
	maxAge      time.Duration
	logger      *slog.Logger
}

func NewService(roomService iRoomService, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomService: roomService,
		interval:    cfg.Interval,
		maxAge:      cfg.MaxAge,
		logger:      logger,
	}
}

// Run sweeps every interval until ctx is done.
func (s service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "reaper started", "interval", s.interval, "max_age", s.maxAge)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.InfoContext(ctx, "reaped rooms", "count", n)
			}
		}
	}
}

// Sweep destroys every room that is empty and older than the max age and
// returns how many it removed.
func (s service) Sweep(ctx context.Context) int {
	removed := 0
	for _, roomId := range s.roomService.ListRoomIds() {
		reaped, err := s.roomService.ReapRoom(ctx, &room.ReapRoomParams{
			RoomId: roomId,
			MaxAge: s.maxAge,
		})
		if err != nil {
			if !errors.Is(err, room.ErrRoomNotFound) {
				s.logger.WarnContext(ctx, "failed to reap room", "room_id", roomId, "error", err)
			}
			continue
		}

		if reaped {
			removed++
		}
	}

	return removed
}
