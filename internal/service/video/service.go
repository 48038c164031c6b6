package video

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/internal/repository/video"
	"github.com/spf13/afero"
)

var (
	ErrInvalidAsset   = errors.New("invalid video asset")
	ErrAssetTooLarge  = errors.New("video exceeds size limit")
	ErrStorageFailure = errors.New("video storage failure")
	ErrVideoNotFound  = errors.New("video not found")
)

type iMetadataRepo interface {
	Save(context.Context, video.Video) error
	Get(context.Context, string) (video.Video, error)
	Delete(context.Context, string) error
}

type iBlobRepo interface {
	Write(ctx context.Context, name string, src io.Reader, limit int64) (int64, error)
	Open(name string) (afero.File, int64, error)
	Remove(name string) error
	RemoveStem(stem string) (int, error)
}

type Config struct {
	MaxSize int64
	Now     func() time.Time
}

type service struct {
	metadataRepo iMetadataRepo
	blobRepo     iBlobRepo
	maxSize      int64
	now          func() time.Time
	logger       *slog.Logger
}

func NewService(metadataRepo iMetadataRepo, blobRepo iBlobRepo, cfg *Config, logger *slog.Logger) *service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		metadataRepo: metadataRepo,
		blobRepo:     blobRepo,
		maxSize:      cfg.MaxSize,
		now:          now,
		logger:       logger,
	}
}
