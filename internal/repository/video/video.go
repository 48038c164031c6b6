package video

import (
	"errors"
	"time"
)

var ErrVideoNotFound = errors.New("video not found")

// Video is the metadata of one stored blob. Path is the blob name within
// the blob store, not a filesystem path.
type Video struct {
	Id        string
	Path      string
	MimeType  string
	Filename  string
	Size      int64
	CreatedAt time.Time
}
