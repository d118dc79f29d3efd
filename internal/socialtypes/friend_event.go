package socialtypes

import (
	"context"
	"strconv"
	"time"
)

// FriendEventType names a change in the friend graph.
type FriendEventType string

const (
	FriendRequestCreated  FriendEventType = "friend_request.created"
	FriendRequestAccepted FriendEventType = "friend_request.accepted"
)

// FriendEvent is published after a friend-graph mutation commits.
type FriendEvent struct {
	Type        FriendEventType `json:"type"`
	RequestID   uint            `json:"requestId"`
	SenderID    uint            `json:"senderId"`
	RecipientID uint            `json:"recipientId"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NotifyUserID is the user who should hear about the event: the recipient of
// a new request, or the original sender once it is accepted.
func (e FriendEvent) NotifyUserID() uint {
	if e.Type == FriendRequestAccepted {
		return e.SenderID
	}
	return e.RecipientID
}

// Key is the partitioning key used on the event bus.
func (e FriendEvent) Key() []byte {
	return []byte(strconv.FormatUint(uint64(e.NotifyUserID()), 10))
}

// FriendEventPublisher ships committed friend events to interested parties.
type FriendEventPublisher interface {
	PublishFriendEvent(ctx context.Context, event FriendEvent) error
}

// NoopFriendEventPublisher drops events. Used when no event bus is configured.
type NoopFriendEventPublisher struct{}

func (NoopFriendEventPublisher) PublishFriendEvent(context.Context, FriendEvent) error { return nil }
