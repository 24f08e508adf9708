package chat

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TypeChat       MessageType = "CHAT"
	TypeJoin       MessageType = "JOIN"
	TypeDisconnect MessageType = "DISCONNECT"
)

type Direction string

const (
	// DirectionOutbound messages are sent by the application.
	DirectionOutbound Direction = "outbound"
	// DirectionInbound messages are received from a user.
	DirectionInbound Direction = "inbound"
)

// Message is a single entry in a chat room.
// Sender and To hold user names; To is only used by private rooms.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Type      MessageType `json:"type"`
	Direction Direction   `json:"direction"`
	Sender    string      `json:"sender"`
	To        string      `json:"to,omitempty"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

func (m Message) String() string {
	return m.Sender + ": " + m.Content
}

// Frame is the JSON envelope that is exchanged over the websocket.
// Clients send a destination with content (and optionally a recipient), the server sends a destination with a message.
type Frame struct {
	Destination string   `json:"destination"`
	Content     string   `json:"content,omitempty"`
	To          string   `json:"to,omitempty"`
	Message     *Message `json:"message,omitempty"`
}
