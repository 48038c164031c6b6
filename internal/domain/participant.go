package domain

import "time"

type Participant struct {
	Id       string    `json:"id"`
	Nickname string    `json:"nickname"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Message struct {
	Id         string    `json:"id"`
	SenderId   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

type Reaction struct {
	Id         string    `json:"id"`
	SenderId   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Emoji      string    `json:"emoji"`
	Timestamp  time.Time `json:"timestamp"`
}
