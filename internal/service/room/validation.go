package room

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var nicknameRule = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, 20),
}

var roomIdRule = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, 16),
}

var messageRule = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, 500),
}

var emojiRule = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, 16),
}

func validationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func (p *JoinRoomParams) Validate() error {
	p.Nickname = strings.TrimSpace(p.Nickname)
	p.RoomId = strings.TrimSpace(p.RoomId)

	if err := validation.ValidateStruct(p,
		validation.Field(&p.RoomId, roomIdRule...),
		validation.Field(&p.Nickname, nicknameRule...),
	); err != nil {
		return validationErr(err)
	}

	return nil
}

func (p *SendMessageParams) Validate() error {
	p.Message = strings.TrimSpace(p.Message)

	if err := validation.ValidateStruct(p,
		validation.Field(&p.Message, messageRule...),
	); err != nil {
		return validationErr(err)
	}

	return nil
}

func (p *SendReactionParams) Validate() error {
	if err := validation.ValidateStruct(p,
		validation.Field(&p.Emoji, emojiRule...),
	); err != nil {
		return validationErr(err)
	}

	return nil
}

func (p *CreateRoomParams) Validate() error {
	p.HostName = strings.TrimSpace(p.HostName)

	if err := validation.ValidateStruct(p,
		validation.Field(&p.HostName, nicknameRule...),
	); err != nil {
		return validationErr(err)
	}

	return nil
}
