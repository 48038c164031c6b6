package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
)

type ConnectSessionParams struct {
	SessionId string
	Conn      connection.Conn
}

func (s service) ConnectSession(ctx context.Context, params *ConnectSessionParams) error {
	if err := s.connRepo.Add(params.SessionId, params.Conn); err != nil {
		s.logger.InfoContext(ctx, "failed to add connection", "error", err)
		return fmt.Errorf("failed to add connection: %w", err)
	}

	return nil
}

type JoinRoomParams struct {
	SessionId string
	RoomId    string
	Nickname  string
	HostToken string
}

type JoinRoomResponse struct {
	RoomId string
	IsHost bool
}

// JoinRoom adds the session to the room. A matching host token binds host
// control to this session, replacing any earlier binding.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if err := params.Validate(); err != nil {
		return JoinRoomResponse{}, err
	}

	current, err := s.connRepo.GetRoomId(params.SessionId)
	if err != nil {
		return JoinRoomResponse{}, ErrSessionNotFound
	}
	if current != "" {
		return JoinRoomResponse{}, ErrAlreadyJoined
	}

	tokenIssued := params.HostToken != "" && s.verifyHostToken(params.HostToken) == nil

	var resp JoinRoomResponse
	if err := s.roomRepo.Update(params.RoomId, func(rm *domain.Room) error {
		isHost := tokenIssued && rm.CheckHostToken(params.HostToken)
		participant, err := rm.AddParticipant(params.SessionId, params.Nickname, isHost, s.now())
		if err != nil {
			return err
		}

		if err := s.connRepo.SetRoomId(params.SessionId, rm.Id()); err != nil {
			_, _, _ = rm.RemoveParticipant(params.SessionId)
			return ErrSessionNotFound
		}

		participants := rm.Participants()
		s.send(ctx, params.SessionId, &Output{
			Type: EventRoomJoined,
			Payload: RoomJoinedPayload{
				RoomId:        rm.Id(),
				ParticipantId: params.SessionId,
				IsHost:        isHost,
				VideoId:       rm.VideoId(),
				VideoState:    s.videoState(rm),
				Participants:  participants,
				Chat:          rm.Chat().Last(domain.ChatSnapshotSize),
				Reactions:     rm.Reactions().Items(),
			},
		})
		s.broadcast(ctx, rm, &Output{
			Type: EventParticipantJoined,
			Payload: ParticipantJoinedPayload{
				Participant:  participant,
				Participants: participants,
			},
		}, params.SessionId)

		resp = JoinRoomResponse{
			RoomId: rm.Id(),
			IsHost: isHost,
		}
		return nil
	}); err != nil {
		if errors.Is(err, domain.ErrMemberAlreadyJoined) {
			return JoinRoomResponse{}, ErrAlreadyJoined
		}
		return JoinRoomResponse{}, s.mapRoomErr(err)
	}

	s.logger.InfoContext(ctx, "participant joined", "room_id", resp.RoomId, "is_host", resp.IsHost)
	return resp, nil
}

// DisconnectSession removes the session and, if it had joined, its
// participant. The last participant to leave destroys the room. A second
// call for the same session returns ErrSessionNotFound and changes nothing.
func (s service) DisconnectSession(ctx context.Context, sessionId string) error {
	roomId, err := s.connRepo.Remove(sessionId)
	if err != nil {
		return ErrSessionNotFound
	}

	if roomId == "" {
		return nil
	}

	if err := s.roomRepo.Update(roomId, func(rm *domain.Room) error {
		participant, wasHost, err := rm.RemoveParticipant(sessionId)
		if err != nil {
			return err
		}

		if rm.IsEmpty() {
			s.closeRoom(ctx, rm)
			return nil
		}

		s.broadcast(ctx, rm, &Output{
			Type: EventParticipantLeft,
			Payload: ParticipantLeftPayload{
				ParticipantId: participant.Id,
				Nickname:      participant.Nickname,
				WasHost:       wasHost,
				Participants:  rm.Participants(),
			},
		}, "")
		return nil
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to leave room", "room_id", roomId, "error", err)
		return s.mapRoomErr(err)
	}

	return nil
}
