package controller

import (
	"errors"
	"net/http"

	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/internal/service/stream"
	"github.com/sharetube/watchparty/internal/service/video"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

var (
	ErrRateLimited = errors.New("rate limited")
	ErrNoVideoPart = errors.New("multipart field \"video\" is required")
)

// httpStatus maps service errors to a status code and a client-facing message.
func httpStatus(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, video.ErrAssetTooLarge):
		return http.StatusRequestEntityTooLarge, video.ErrAssetTooLarge.Error()
	case errors.Is(err, room.ErrRoomNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, video.ErrVideoNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, room.ErrUnauthorized):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, room.ErrUploadInProgress):
		return http.StatusConflict, err.Error()
	case errors.Is(err, video.ErrInvalidAsset), errors.Is(err, room.ErrValidation), errors.Is(err, ErrNoVideoPart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, stream.ErrMalformedRange), errors.Is(err, stream.ErrUnsatisfiableRange):
		return http.StatusRequestedRangeNotSatisfiable, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// wsErrorMessage is the text sent to a viewer in an error event.
func wsErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "Room not found", true
	case errors.Is(err, room.ErrValidation):
		return err.Error(), true
	case errors.Is(err, room.ErrNotJoined):
		return "Join a room first", true
	case errors.Is(err, room.ErrAlreadyJoined):
		return "Already joined a room", true
	case errors.Is(err, wsrouter.ErrUnknownType):
		return "Unknown message type", true
	case errors.Is(err, wsrouter.ErrInvalidMessage):
		return "Invalid message", true
	case errors.Is(err, ErrRateLimited):
		return "Too many messages", true
	default:
		return "Internal error", false
	}
}
