package room

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
)

type ControlPlayerParams struct {
	SessionId string
	Action    domain.PlaybackAction
	Time      float64
}

// ControlPlayer applies a host playback command and relays it to the other
// participants. Commands from a non-host are dropped and report false.
func (s service) ControlPlayer(ctx context.Context, params *ControlPlayerParams) (bool, error) {
	roomId, err := s.joinedRoom(params.SessionId)
	if err != nil {
		return false, err
	}

	applied := false
	if err := s.roomRepo.Update(roomId, func(rm *domain.Room) error {
		now := s.now()
		if !rm.Control(params.SessionId, params.Action, params.Time, now) {
			return nil
		}
		applied = true

		s.broadcast(ctx, rm, &Output{
			Type: EventSync,
			Payload: SyncPayload{
				Action:          params.Action,
				Time:            rm.Playback().ReferenceTime,
				ServerTimestamp: now.UnixMilli(),
			},
		}, params.SessionId)
		return nil
	}); err != nil {
		return false, s.mapRoomErr(err)
	}

	if !applied {
		s.logger.DebugContext(ctx, "ignored control from non-host", "action", params.Action)
	}

	return applied, nil
}

// RequestSync sends the requester the room's current extrapolated position.
func (s service) RequestSync(ctx context.Context, sessionId string) error {
	roomId, err := s.joinedRoom(sessionId)
	if err != nil {
		return err
	}

	if err := s.roomRepo.Update(roomId, func(rm *domain.Room) error {
		now := s.now()
		playback := rm.Playback()

		s.send(ctx, sessionId, &Output{
			Type: EventSync,
			Payload: SyncPayload{
				Action:          playback.Action(),
				Time:            playback.CurrentPosition(now),
				ServerTimestamp: now.UnixMilli(),
			},
		})
		return nil
	}); err != nil {
		return s.mapRoomErr(err)
	}

	return nil
}
