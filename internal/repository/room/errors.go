package room

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrCodeSpaceExhausted = errors.New("failed to generate unique room id")
)
