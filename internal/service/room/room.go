package room

import (
	"context"
	"fmt"
	"time"

	"github.com/sharetube/watchparty/internal/domain"
)

type CreateRoomParams struct {
	HostName string
}

type CreateRoomResponse struct {
	RoomId    string
	HostToken string
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	if err := params.Validate(); err != nil {
		return CreateRoomResponse{}, err
	}

	now := s.now()
	hostToken, err := s.generateHostToken(now)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate host token", "error", err)
		return CreateRoomResponse{}, fmt.Errorf("failed to generate host token: %w", err)
	}

	rm, err := s.roomRepo.Create(params.HostName, hostToken, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create room", "error", err)
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	s.logger.InfoContext(ctx, "room created", "room_id", rm.Id())
	return CreateRoomResponse{
		RoomId:    rm.Id(),
		HostToken: hostToken,
	}, nil
}

type GetRoomResponse struct {
	RoomId           string
	HostName         string
	ParticipantCount int
	HasVideo         bool
	CreatedAt        time.Time
}

func (s service) GetRoom(ctx context.Context, roomId string) (GetRoomResponse, error) {
	var resp GetRoomResponse
	if err := s.roomRepo.Update(roomId, func(rm *domain.Room) error {
		resp = GetRoomResponse{
			RoomId:           rm.Id(),
			HostName:         rm.HostName(),
			ParticipantCount: rm.ParticipantCount(),
			HasVideo:         rm.VideoId() != "",
			CreatedAt:        rm.CreatedAt(),
		}
		return nil
	}); err != nil {
		return GetRoomResponse{}, s.mapRoomErr(err)
	}

	return resp, nil
}

func (s service) ListRoomIds() []string {
	return s.roomRepo.List()
}

type ReapRoomParams struct {
	RoomId string
	MaxAge time.Duration
}

// ReapRoom destroys the room if it is empty and older than MaxAge, and
// reports whether it did.
func (s service) ReapRoom(ctx context.Context, params *ReapRoomParams) (bool, error) {
	reaped := false
	err := s.roomRepo.Update(params.RoomId, func(rm *domain.Room) error {
		if !rm.IsEmpty() || s.now().Sub(rm.CreatedAt()) <= params.MaxAge {
			return nil
		}

		s.closeRoom(ctx, rm)
		reaped = true
		return nil
	})
	if err != nil {
		return false, s.mapRoomErr(err)
	}

	return reaped, nil
}

// closeRoom deletes the room's video and marks it closed. Called with rm
// locked; the registry drops the room before the lock is released.
func (s service) closeRoom(ctx context.Context, rm *domain.Room) {
	if videoId := rm.VideoId(); videoId != "" {
		if err := s.videoService.Delete(ctx, videoId); err != nil {
			s.logger.WarnContext(ctx, "failed to delete room video", "room_id", rm.Id(), "video_id", videoId, "error", err)
		}
	}

	rm.Close()
	s.logger.InfoContext(ctx, "room closed", "room_id", rm.Id())
}
