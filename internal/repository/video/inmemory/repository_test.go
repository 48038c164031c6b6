package inmemory

import (
	"context"
	"log/slog"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	r := NewRepo(slog.Default())
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, video.Video{Id: "a", Path: "a.mp4"}))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", got.Path)

	require.NoError(t, r.Delete(ctx, "a"))
	_, err = r.Get(ctx, "a")
	assert.ErrorIs(t, err, video.ErrVideoNotFound)
}
