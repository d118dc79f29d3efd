package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"

	"social-go/internal/config"
)

// MessageHandler processes one consumed message. Returning nil commits its offset.
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// MessageConsumer defines the interface for a Kafka message consumer.
type MessageConsumer interface {
	Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error
	Close()
}

// confluentKafkaConsumer is an implementation of MessageConsumer using confluent-kafka-go.
type confluentKafkaConsumer struct {
	consumer *kafka.Consumer
	cfg      config.KafkaConfig
	groupID  string
	log      *logrus.Logger
}

// NewConfluentKafkaConsumer prepares a consumer; the underlying client is
// created in Consume once the group is known.
func NewConfluentKafkaConsumer(cfg config.KafkaConfig, log *logrus.Logger) (MessageConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: no brokers configured")
	}
	return &confluentKafkaConsumer{cfg: cfg, log: log}, nil
}

// Consume blocks until ctx is canceled or a fatal error occurs.
func (c *confluentKafkaConsumer) Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error {
	if len(topics) == 0 {
		return fmt.Errorf("kafka consumer: no topics specified")
	}
	c.groupID = groupID

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(c.cfg.Brokers, ","),
		"group.id":           c.groupID,
		"auto.offset.reset":  "latest", // notifications are only useful while fresh
		"enable.auto.commit": "false",
		"security.protocol":  c.cfg.Protocol,
	}
	if c.cfg.ClientID != "" {
		_ = configMap.SetKey("client.id", c.cfg.ClientID)
	}

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer for group %s: %w", groupID, err)
	}
	c.consumer = consumer

	if err := c.consumer.SubscribeTopics(topics, nil); err != nil {
		_ = c.consumer.Close()
		c.consumer = nil
		return fmt.Errorf("failed to subscribe to topics %v for group %s: %w", topics, groupID, err)
	}

	log := c.log.WithFields(logrus.Fields{"group": groupID, "topics": topics})
	log.Info("kafka consumer started")

	for {
		select {
		case <-ctx.Done():
			log.Info("kafka consumer context canceled")
			return nil
		default:
		}

		ev := c.consumer.Poll(1000)
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msgLog := log.WithFields(logrus.Fields{
				"topic":  *e.TopicPartition.Topic,
				"offset": e.TopicPartition.Offset,
			})
			if err := handler(ctx, e); err != nil {
				msgLog.WithError(err).Error("failed to process kafka message")
				continue
			}
			if _, err := c.consumer.CommitMessage(e); err != nil {
				msgLog.WithError(err).Warn("failed to commit kafka offset")
			}
		case kafka.Error:
			log.WithError(e).WithField("fatal", e.IsFatal()).Error("kafka consumer error")
			if e.IsFatal() {
				return e
			}
		case kafka.AssignedPartitions:
			log.WithField("partitions", e.Partitions).Info("partitions assigned")
			c.consumer.Assign(e.Partitions)
		case kafka.RevokedPartitions:
			log.WithField("partitions", e.Partitions).Info("partitions revoked")
			c.consumer.Unassign()
		}
	}
}

// Close closes the Kafka consumer.
func (c *confluentKafkaConsumer) Close() {
	if c.consumer == nil {
		return
	}
	if err := c.consumer.Close(); err != nil {
		c.log.WithError(err).WithField("group", c.groupID).Error("failed to close kafka consumer")
	}
	c.consumer = nil
}
