package connection

import "errors"

var (
	ErrNotFound      = errors.New("connection not found")
	ErrAlreadyExists = errors.New("connection already exists")
)

// Conn is an outbound channel to one viewer. Send must never block; it
// reports false when the message could not be queued.
type Conn interface {
	Send(data []byte) bool
	Close()
}
