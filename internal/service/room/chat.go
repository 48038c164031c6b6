package room

import (
	"context"
	"errors"

	"github.com/sharetube/watchparty/internal/domain"
)

type SendMessageParams struct {
	SessionId string
	Message   string
}

func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (domain.Message, error) {
	if err := params.Validate(); err != nil {
		return domain.Message{}, err
	}

	roomId, err := s.joinedRoom(params.SessionId)
	if err != nil {
		return domain.Message{}, err
	}

	var msg domain.Message
	if err := s.roomRepo.Update(roomId, func(rm *domain.Room) error {
		msg, err = rm.AppendMessage(s.generateTimeBasedId(), params.SessionId, params.Message, s.now())
		if err != nil {
			return err
		}

		s.broadcast(ctx, rm, &Output{
			Type:    EventNewMessage,
			Payload: msg,
		}, "")
		return nil
	}); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return domain.Message{}, ErrNotJoined
		}
		return domain.Message{}, s.mapRoomErr(err)
	}

	return msg, nil
}

type SendReactionParams struct {
	SessionId string
	Emoji     string
}

func (s service) SendReaction(ctx context.Context, params *SendReactionParams) (domain.Reaction, error) {
	if err := params.Validate(); err != nil {
		return domain.Reaction{}, err
	}

	roomId, err := s.joinedRoom(params.SessionId)
	if err != nil {
		return domain.Reaction{}, err
	}

	var reaction domain.Reaction
	if err := s.roomRepo.Update(roomId, func(rm *domain.Room) error {
		reaction, err = rm.AppendReaction(s.generateTimeBasedId(), params.SessionId, params.Emoji, s.now())
		if err != nil {
			return err
		}

		s.broadcast(ctx, rm, &Output{
			Type:    EventNewReaction,
			Payload: reaction,
		}, "")
		return nil
	}); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return domain.Reaction{}, ErrNotJoined
		}
		return domain.Reaction{}, s.mapRoomErr(err)
	}

	return reaction, nil
}
