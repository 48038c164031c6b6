package inmemory

import (
	"log/slog"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) Send([]byte) bool { return true }
func (nopConn) Close()           {}

func TestRepo(t *testing.T) {
	r := NewRepo(slog.Default())
	c := nopConn{}

	require.NoError(t, r.Add("s1", c))
	assert.ErrorIs(t, r.Add("s1", c), connection.ErrAlreadyExists)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	roomId, err := r.GetRoomId("s1")
	require.NoError(t, err)
	assert.Empty(t, roomId)
	require.NoError(t, r.SetRoomId("s1", "ROOM0001"))

	roomId, err = r.Remove("s1")
	require.NoError(t, err)
	assert.Equal(t, "ROOM0001", roomId)

	_, err = r.Remove("s1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	assert.ErrorIs(t, r.SetRoomId("s1", "X"), connection.ErrNotFound)

	_, err = r.Get("s1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}
