package domain

import "errors"

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyJoined = errors.New("member already joined")
)
