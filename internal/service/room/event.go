package room

import (
	"github.com/sharetube/watchparty/internal/domain"
)

const (
	EventRoomJoined        = "room-joined"
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventSync              = "sync"
	EventNewMessage        = "new-message"
	EventNewReaction       = "new-reaction"
	EventVideoUploaded     = "video-uploaded"
	EventError             = "error"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type VideoState struct {
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	LastUpdated int64   `json:"lastUpdated"`
}

type RoomJoinedPayload struct {
	RoomId        string               `json:"roomId"`
	ParticipantId string               `json:"participantId"`
	IsHost        bool                 `json:"isHost"`
	VideoId       string               `json:"videoId"`
	VideoState    VideoState           `json:"videoState"`
	Participants  []domain.Participant `json:"participants"`
	Chat          []domain.Message     `json:"chat"`
	Reactions     []domain.Reaction    `json:"reactions"`
}

type ParticipantJoinedPayload struct {
	Participant  domain.Participant   `json:"participant"`
	Participants []domain.Participant `json:"participants"`
}

type ParticipantLeftPayload struct {
	ParticipantId string               `json:"participantId"`
	Nickname      string               `json:"nickname"`
	WasHost       bool                 `json:"wasHost"`
	Participants  []domain.Participant `json:"participants"`
}

type SyncPayload struct {
	Action          domain.PlaybackAction `json:"action"`
	Time            float64               `json:"time"`
	ServerTimestamp int64                 `json:"serverTimestamp"`
}

type VideoUploadedPayload struct {
	VideoId  string `json:"videoId"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
