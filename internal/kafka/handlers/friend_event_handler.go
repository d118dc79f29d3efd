package kafkahandlers

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"social-go/internal/socialtypes"
)

// Notifier pushes a message to a connected user. *websocket.Hub satisfies it.
type Notifier interface {
	Deliver(msg *socialtypes.Message) bool
}

// FriendEventHandler turns friend events from the bus into websocket
// notifications.
type FriendEventHandler struct {
	notifier Notifier
	log      *logrus.Logger
}

// NewFriendEventHandler creates a new FriendEventHandler.
func NewFriendEventHandler(notifier Notifier, log *logrus.Logger) *FriendEventHandler {
	return &FriendEventHandler{notifier: notifier, log: log}
}

// HandleMessage is the kafka.MessageHandler for the friend events topic.
// Undecodable messages are logged and skipped so they do not block the partition.
func (h *FriendEventHandler) HandleMessage(ctx context.Context, msg *kafka.Message) error {
	var event socialtypes.FriendEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.log.WithError(err).WithField("key", string(msg.Key)).Warn("skipping undecodable friend event")
		return nil
	}
	h.Notify(event)
	return nil
}

// Notify forwards event to the user it concerns. Users that are not
// connected simply miss it.
func (h *FriendEventHandler) Notify(event socialtypes.FriendEvent) {
	switch event.Type {
	case socialtypes.FriendRequestCreated, socialtypes.FriendRequestAccepted:
	default:
		h.log.WithField("type", event.Type).Debug("ignoring unknown friend event type")
		return
	}

	h.notifier.Deliver(&socialtypes.Message{
		ID:         uuid.NewString(),
		Type:       socialtypes.NotificationMessageType,
		ReceiverID: event.NotifyUserID(),
		Event:      &event,
		Timestamp:  event.Timestamp,
	})
}
