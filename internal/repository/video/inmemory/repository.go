package inmemory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sharetube/watchparty/internal/repository/video"
)

type repo struct {
	videos map[string]video.Video
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		videos: make(map[string]video.Video),
		logger: logger,
	}
}

func (r *repo) Save(_ context.Context, v video.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("video.inmemory.Save", "id", v.Id)
	r.videos[v.Id] = v
	return nil
}

func (r *repo) Get(_ context.Context, id string) (video.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok {
		return video.Video{}, video.ErrVideoNotFound
	}

	return v, nil
}

func (r *repo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[id]; !ok {
		return video.ErrVideoNotFound
	}

	r.logger.Debug("video.inmemory.Delete", "id", id)
	delete(r.videos, id)
	return nil
}
