package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom() *Room {
	return NewRoom("ABCD1234", "secret", "alice", epoch)
}

func TestRoomHostToken(t *testing.T) {
	r := newTestRoom()

	assert.True(t, r.CheckHostToken("secret"))
	assert.False(t, r.CheckHostToken("secreT"))
	assert.False(t, r.CheckHostToken(""))
}

func TestRoomParticipants(t *testing.T) {
	r := newTestRoom()

	_, err := r.AddParticipant("viewer-1", "bob", false, epoch.Add(time.Second))
	require.NoError(t, err)
	_, err = r.AddParticipant("host", "alice", true, epoch.Add(2*time.Second))
	require.NoError(t, err)
	_, err = r.AddParticipant("viewer-1", "bob", false, epoch)
	assert.ErrorIs(t, err, ErrMemberAlreadyJoined)

	list := r.Participants()
	require.Len(t, list, 2)
	assert.Equal(t, "host", list[0].Id)
	assert.Equal(t, "viewer-1", list[1].Id)
	assert.Equal(t, "host", r.HostConnectionId())

	p, wasHost, err := r.RemoveParticipant("host")
	require.NoError(t, err)
	assert.True(t, wasHost)
	assert.Equal(t, "alice", p.Nickname)
	assert.Empty(t, r.HostConnectionId())

	_, _, err = r.RemoveParticipant("host")
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.Equal(t, 1, r.ParticipantCount())
}

func TestRoomHostRebindDemotesPreviousHost(t *testing.T) {
	r := newTestRoom()

	_, err := r.AddParticipant("host1", "alice", true, epoch)
	require.NoError(t, err)
	_, err = r.AddParticipant("host2", "alice", true, epoch.Add(time.Second))
	require.NoError(t, err)

	hosts := 0
	for _, p := range r.Participants() {
		if p.IsHost {
			hosts++
			assert.Equal(t, "host2", p.Id)
		}
	}
	assert.Equal(t, 1, hosts)
	assert.Equal(t, "host2", r.HostConnectionId())
	assert.False(t, r.Control("host1", ActionPlay, 5, epoch))

	_, wasHost, err := r.RemoveParticipant("host1")
	require.NoError(t, err)
	assert.False(t, wasHost)
	assert.Equal(t, "host2", r.HostConnectionId())
}

func TestRoomControlIsHostOnly(t *testing.T) {
	r := newTestRoom()
	_, _ = r.AddParticipant("host", "alice", true, epoch)
	_, _ = r.AddParticipant("viewer", "bob", false, epoch)

	assert.False(t, r.Control("viewer", ActionPlay, 30, epoch))
	assert.False(t, r.Playback().IsPlaying)
	assert.Equal(t, 0.0, r.CurrentPosition(epoch))

	assert.True(t, r.Control("host", ActionPlay, 30, epoch))
	assert.InDelta(t, 32.0, r.CurrentPosition(epoch.Add(2*time.Second)), 1e-9)

	assert.False(t, r.Control("host", PlaybackAction("rewind"), 0, epoch))
}

func TestRoomReplaceVideoResetsPlayback(t *testing.T) {
	r := newTestRoom()
	_, _ = r.AddParticipant("host", "alice", true, epoch)

	assert.Empty(t, r.ReplaceVideo("v1", epoch))
	r.Control("host", ActionPlay, 50, epoch)

	assert.Equal(t, "v1", r.ReplaceVideo("v2", epoch.Add(time.Second)))
	assert.Equal(t, "v2", r.VideoId())
	assert.False(t, r.Playback().IsPlaying)
	assert.Equal(t, 0.0, r.CurrentPosition(epoch.Add(time.Minute)))
}

func TestRoomChatRequiresParticipant(t *testing.T) {
	r := newTestRoom()
	_, err := r.AppendMessage("m1", "ghost", "hi", epoch)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, _ = r.AddParticipant("viewer", "bob", false, epoch)
	msg, err := r.AppendMessage("m1", "viewer", "hi", epoch)
	require.NoError(t, err)
	assert.Equal(t, "bob", msg.SenderName)

	reaction, err := r.AppendReaction("r1", "viewer", "🎉", epoch)
	require.NoError(t, err)
	assert.Equal(t, "🎉", reaction.Emoji)

	assert.Equal(t, 1, r.Chat().Len())
	assert.Equal(t, 1, r.Reactions().Len())
}

func TestRoomUploadSlot(t *testing.T) {
	r := newTestRoom()

	assert.True(t, r.BeginUpload())
	assert.False(t, r.BeginUpload())
	r.EndUpload()
	assert.True(t, r.BeginUpload())
}

func TestRoomClose(t *testing.T) {
	r := newTestRoom()
	_, _ = r.AddParticipant("host", "alice", true, epoch)

	r.Close()
	assert.True(t, r.IsClosed())
	assert.False(t, r.IsHostConnection("host"))
}
