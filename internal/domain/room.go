package domain

import (
	"crypto/subtle"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	ChatLogCapacity     = 100
	ReactionLogCapacity = 50
	ChatSnapshotSize    = 50
)

// Room is the aggregate of one watch session. Callers must hold the room's
// lock (Lock/Unlock) around every method; the registry does this for them.
type Room struct {
	mu sync.Mutex

	id               string
	hostToken        string
	hostName         string
	hostConnectionId string
	participants     map[string]*Participant
	videoId          string
	playback         PlaybackState
	chat             *BoundedLog[Message]
	reactions        *BoundedLog[Reaction]
	createdAt        time.Time
	closed           bool
	uploading        bool
}

func NewRoom(id, hostToken, hostName string, now time.Time) *Room {
	return &Room{
		id:           id,
		hostToken:    hostToken,
		hostName:     hostName,
		participants: make(map[string]*Participant),
		playback:     NewPlaybackState(now),
		chat:         NewBoundedLog[Message](ChatLogCapacity),
		reactions:    NewBoundedLog[Reaction](ReactionLogCapacity),
		createdAt:    now,
	}
}

func (r *Room) Lock() {
	r.mu.Lock()
}

func (r *Room) Unlock() {
	r.mu.Unlock()
}

func (r *Room) Id() string {
	return r.id
}

func (r *Room) HostName() string {
	return r.hostName
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Room) VideoId() string {
	return r.videoId
}

func (r *Room) Playback() PlaybackState {
	return r.playback
}

func (r *Room) HostConnectionId() string {
	return r.hostConnectionId
}

// CheckHostToken reports whether token is this room's host token.
func (r *Room) CheckHostToken(token string) bool {
	if token == "" || r.hostToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(r.hostToken)) == 1
}

// IsHostConnection is the only authority check for playback control.
func (r *Room) IsHostConnection(sessionId string) bool {
	return sessionId != "" && sessionId == r.hostConnectionId
}

func (r *Room) AddParticipant(sessionId, nickname string, isHost bool, now time.Time) (Participant, error) {
	if _, ok := r.participants[sessionId]; ok {
		return Participant{}, ErrMemberAlreadyJoined
	}

	p := &Participant{
		Id:       sessionId,
		Nickname: nickname,
		IsHost:   isHost,
		JoinedAt: now,
	}
	r.participants[sessionId] = p

	if isHost {
		// one host at a time: the earlier session keeps watching as a viewer
		if prev, ok := r.participants[r.hostConnectionId]; ok {
			prev.IsHost = false
		}
		r.hostConnectionId = sessionId
	}

	return *p, nil
}

// RemoveParticipant drops the session and releases host control if it held it.
func (r *Room) RemoveParticipant(sessionId string) (Participant, bool, error) {
	p, ok := r.participants[sessionId]
	if !ok {
		return Participant{}, false, ErrMemberNotFound
	}
	delete(r.participants, sessionId)

	wasHost := r.hostConnectionId == sessionId
	if wasHost {
		r.hostConnectionId = ""
	}

	return *p, wasHost, nil
}

func (r *Room) Participant(sessionId string) (Participant, bool) {
	p, ok := r.participants[sessionId]
	if !ok {
		return Participant{}, false
	}

	return *p, true
}

func (r *Room) ParticipantCount() int {
	return len(r.participants)
}

func (r *Room) IsEmpty() bool {
	return len(r.participants) == 0
}

// Participants lists the participants host first, then by join time.
func (r *Room) Participants() []Participant {
	list := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		list = append(list, *p)
	}

	slices.SortFunc(list, func(a, b Participant) int {
		if a.IsHost != b.IsHost {
			if a.IsHost {
				return -1
			}
			return 1
		}
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Id, b.Id)
	})

	return list
}

// Control applies a playback command if sessionId holds host control.
// Commands from anyone else are ignored and false is returned.
func (r *Room) Control(sessionId string, action PlaybackAction, at float64, now time.Time) bool {
	if !r.IsHostConnection(sessionId) || !action.Valid() {
		return false
	}

	r.playback.Apply(action, at, now)
	return true
}

func (r *Room) CurrentPosition(now time.Time) float64 {
	return r.playback.CurrentPosition(now)
}

// ReplaceVideo points the room at videoId, resets playback to paused at zero
// and returns the previous video id.
func (r *Room) ReplaceVideo(videoId string, now time.Time) string {
	previous := r.videoId
	r.videoId = videoId
	r.playback.Reset(now)

	return previous
}

func (r *Room) AppendMessage(id, sessionId, text string, now time.Time) (Message, error) {
	p, ok := r.participants[sessionId]
	if !ok {
		return Message{}, ErrMemberNotFound
	}

	msg := Message{
		Id:         id,
		SenderId:   sessionId,
		SenderName: p.Nickname,
		Message:    text,
		Timestamp:  now,
	}
	r.chat.Append(msg)

	return msg, nil
}

func (r *Room) AppendReaction(id, sessionId, emoji string, now time.Time) (Reaction, error) {
	p, ok := r.participants[sessionId]
	if !ok {
		return Reaction{}, ErrMemberNotFound
	}

	reaction := Reaction{
		Id:         id,
		SenderId:   sessionId,
		SenderName: p.Nickname,
		Emoji:      emoji,
		Timestamp:  now,
	}
	r.reactions.Append(reaction)

	return reaction, nil
}

func (r *Room) Chat() *BoundedLog[Message] {
	return r.chat
}

func (r *Room) Reactions() *BoundedLog[Reaction] {
	return r.reactions
}

// BeginUpload claims the room's single upload slot.
func (r *Room) BeginUpload() bool {
	if r.uploading {
		return false
	}

	r.uploading = true
	return true
}

func (r *Room) EndUpload() {
	r.uploading = false
}

// Close marks the room destroyed. Holders of a stale pointer must treat a
// closed room as gone.
func (r *Room) Close() {
	r.closed = true
	r.hostConnectionId = ""
}

func (r *Room) IsClosed() bool {
	return r.closed
}
