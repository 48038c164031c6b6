package room

import (
	"context"
	"errors"
	"io"

	"github.com/sharetube/watchparty/internal/domain"
	videoService "github.com/sharetube/watchparty/internal/service/video"
)

type UploadVideoParams struct {
	RoomId       string
	HostToken    string
	Filename     string
	DeclaredType string
	Content      io.Reader
}

type UploadVideoResponse struct {
	VideoId  string
	Filename string
	Size     int64
}

// UploadVideo stores a new video for the room and swaps it in, resetting
// playback. Only one upload per room runs at a time. The previous video is
// deleted only after the room points at the new one.
func (s service) UploadVideo(ctx context.Context, params *UploadVideoParams) (UploadVideoResponse, error) {
	var rm *domain.Room
	if err := s.roomRepo.Update(params.RoomId, func(r *domain.Room) error {
		if s.verifyHostToken(params.HostToken) != nil || !r.CheckHostToken(params.HostToken) {
			return ErrUnauthorized
		}

		if !r.BeginUpload() {
			return ErrUploadInProgress
		}

		rm = r
		return nil
	}); err != nil {
		return UploadVideoResponse{}, s.mapRoomErr(err)
	}

	defer func() {
		rm.Lock()
		rm.EndUpload()
		rm.Unlock()
	}()

	v, err := s.videoService.Store(ctx, &videoService.StoreParams{
		Filename:     params.Filename,
		DeclaredType: params.DeclaredType,
		Content:      params.Content,
	})
	if err != nil {
		return UploadVideoResponse{}, err
	}

	var previous string
	if err := s.roomRepo.UpdateRoom(rm, func(r *domain.Room) error {
		previous = r.ReplaceVideo(v.Id, s.now())

		s.broadcast(ctx, r, &Output{
			Type: EventVideoUploaded,
			Payload: VideoUploadedPayload{
				VideoId:  v.Id,
				Filename: v.Filename,
				Size:     v.Size,
			},
		}, "")
		return nil
	}); err != nil {
		// the room was destroyed while the upload was streaming
		if derr := s.videoService.Delete(ctx, v.Id); derr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned video", "video_id", v.Id, "error", derr)
		}
		return UploadVideoResponse{}, s.mapRoomErr(err)
	}

	if previous != "" {
		if err := s.videoService.Delete(ctx, previous); err != nil && !errors.Is(err, videoService.ErrVideoNotFound) {
			s.logger.WarnContext(ctx, "failed to delete previous video", "video_id", previous, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "video uploaded", "room_id", rm.Id(), "video_id", v.Id, "size", v.Size)
	return UploadVideoResponse{
		VideoId:  v.Id,
		Filename: v.Filename,
		Size:     v.Size,
	}, nil
}
