package blob

import "errors"

var (
	ErrBlobNotFound    = errors.New("blob not found")
	ErrBlobExists      = errors.New("blob already exists")
	ErrBlobTooLarge    = errors.New("blob exceeds size limit")
	ErrInvalidBlobName = errors.New("invalid blob name")
)
