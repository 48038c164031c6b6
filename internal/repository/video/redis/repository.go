package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/video"
	"github.com/sharetube/watchparty/pkg/redisfields"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
	logger         *slog.Logger
}

func NewRepo(rc *redis.Client, expireDuration time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
		logger:         logger,
	}
}

type videoHash struct {
	Path      string `redis:"path"`
	MimeType  string `redis:"mime_type"`
	Filename  string `redis:"filename"`
	Size      int64  `redis:"size"`
	CreatedAt int64  `redis:"created_at"`
}

func (r repo) getVideoKey(id string) string {
	return "video:" + id
}

func (r repo) Save(ctx context.Context, v video.Video) error {
	funcName := "video.redis.Save"
	r.logger.DebugContext(ctx, funcName, "id", v.Id)

	videoKey := r.getVideoKey(v.Id)
	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, videoKey)
	pipe.HSet(ctx, videoKey, redisfields.FromStruct(videoHash{
		Path:      v.Path,
		MimeType:  v.MimeType,
		Filename:  v.Filename,
		Size:      v.Size,
		CreatedAt: v.CreatedAt.UnixMilli(),
	}))
	if r.expireDuration > 0 {
		pipe.Expire(ctx, videoKey, r.expireDuration)
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.InfoContext(ctx, funcName, "error", err)
		return err
	}

	return nil
}

func (r repo) Get(ctx context.Context, id string) (video.Video, error) {
	var h videoHash
	videoKey := r.getVideoKey(id)
	if err := r.rc.HGetAll(ctx, videoKey).Scan(&h); err != nil {
		return video.Video{}, err
	}

	if h.Path == "" {
		return video.Video{}, video.ErrVideoNotFound
	}

	if r.expireDuration > 0 {
		r.rc.Expire(ctx, videoKey, r.expireDuration)
	}

	return video.Video{
		Id:        id,
		Path:      h.Path,
		MimeType:  h.MimeType,
		Filename:  h.Filename,
		Size:      h.Size,
		CreatedAt: time.UnixMilli(h.CreatedAt).UTC(),
	}, nil
}

func (r repo) Delete(ctx context.Context, id string) error {
	n, err := r.rc.Del(ctx, r.getVideoKey(id)).Result()
	if err != nil {
		return err
	}

	if n == 0 {
		return video.ErrVideoNotFound
	}

	return nil
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
