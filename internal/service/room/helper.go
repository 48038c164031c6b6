package room

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/sharetube/watchparty/internal/domain"
	roomRepo "github.com/sharetube/watchparty/internal/repository/room"
)

func (s service) generateTimeBasedId() string {
	return ulid.Make().String()
}

// broadcast queues output to every participant of rm except exceptId. It
// must be called with rm locked so that recipients observe events in the
// order the room applied them.
func (s service) broadcast(ctx context.Context, rm *domain.Room, output *Output, exceptId string) {
	data, err := json.Marshal(output)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal output", "type", output.Type, "error", err)
		return
	}

	for _, p := range rm.Participants() {
		if p.Id == exceptId {
			continue
		}

		s.sendRaw(ctx, p.Id, data)
	}
}

func (s service) send(ctx context.Context, sessionId string, output *Output) {
	data, err := json.Marshal(output)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal output", "type", output.Type, "error", err)
		return
	}

	s.sendRaw(ctx, sessionId, data)
}

// sendRaw never blocks. A connection whose queue is full is closed; its read
// loop then runs the regular disconnect.
func (s service) sendRaw(ctx context.Context, sessionId string, data []byte) {
	conn, err := s.connRepo.Get(sessionId)
	if err != nil {
		s.logger.DebugContext(ctx, "no connection for participant", "session_id", sessionId)
		return
	}

	if !conn.Send(data) {
		s.logger.WarnContext(ctx, "send queue full, closing connection", "session_id", sessionId)
		conn.Close()
	}
}

func (s service) mapRoomErr(err error) error {
	if errors.Is(err, roomRepo.ErrRoomNotFound) {
		return ErrRoomNotFound
	}

	return err
}

// joinedRoom returns the room id sessionId has joined.
func (s service) joinedRoom(sessionId string) (string, error) {
	roomId, err := s.connRepo.GetRoomId(sessionId)
	if err != nil {
		return "", ErrSessionNotFound
	}

	if roomId == "" {
		return "", ErrNotJoined
	}

	return roomId, nil
}

func (s service) videoState(rm *domain.Room) VideoState {
	now := s.now()
	playback := rm.Playback()

	return VideoState{
		IsPlaying:   playback.IsPlaying,
		CurrentTime: playback.CurrentPosition(now),
		LastUpdated: playback.LastUpdated.UnixMilli(),
	}
}
