package types

import (
	"time"
)

type RoomKind string

const (
	RoomKindLobby RoomKind = "lobby"
	RoomKindDM    RoomKind = "dm"
)

// Room is a logical conversation scope: the single shared lobby or a
// two-party DM. For DM rooms Participants holds exactly two usernames in
// sorted order.
type Room struct {
	ID           string   `json:"id"`
	Kind         RoomKind `json:"kind"`
	Participants []string `json:"participants,omitempty"`
}

// Message is a single chat message. ID is assigned by the store and is empty
// only for messages that have not been confirmed yet.
type Message struct {
	ID        string    `json:"id,omitempty"`
	RoomID    string    `json:"room_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
