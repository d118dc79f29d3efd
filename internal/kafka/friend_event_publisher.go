package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"social-go/internal/socialtypes"
)

// FriendEventPublisher writes friend events as JSON to one topic, keyed by
// the user to notify so a user's events stay ordered within a partition.
type FriendEventPublisher struct {
	producer MessageProducer
	topic    string
}

// NewFriendEventPublisher wraps producer for topic.
func NewFriendEventPublisher(producer MessageProducer, topic string) *FriendEventPublisher {
	return &FriendEventPublisher{producer: producer, topic: topic}
}

// PublishFriendEvent implements socialtypes.FriendEventPublisher.
func (p *FriendEventPublisher) PublishFriendEvent(ctx context.Context, event socialtypes.FriendEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal friend event: %w", err)
	}
	return p.producer.SendMessage(ctx, p.topic, event.Key(), payload)
}
