package socialtypes

import "time"

// MessageType defines the type of a message pushed over the websocket.
type MessageType string

const (
	NotificationMessageType MessageType = "notification"
	SystemMessageType       MessageType = "system"
)

// Message is what the notification hub writes to a client socket.
type Message struct {
	ID         string       `json:"id"`
	Type       MessageType  `json:"type"`
	ReceiverID uint         `json:"receiverId"`
	Event      *FriendEvent `json:"event,omitempty"`
	Content    string       `json:"content,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}
