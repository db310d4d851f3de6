package kafka

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"social-go/internal/config"
)

// MessageHandler processes one consumed Kafka message. Returning an error
// skips the offset commit so the message is retried.
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// MessageConsumer consumes topics until the context is canceled.
type MessageConsumer interface {
	Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error
	Close()
}

type confluentKafkaConsumer struct {
	consumer *kafka.Consumer
	cfg      config.KafkaConfig
	groupID  string
}

// NewConfluentKafkaConsumer creates a Kafka consumer using confluent-kafka-go.
// The underlying consumer is built lazily in Consume, where the group is known.
func NewConfluentKafkaConsumer(cfg config.KafkaConfig) (MessageConsumer, error) {
	return &confluentKafkaConsumer{cfg: cfg}, nil
}

// Consume blocks, polling the given topics and committing offsets only after
// the handler succeeds. It returns when ctx is canceled or on a fatal broker
// error.
func (c *confluentKafkaConsumer) Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error {
	if len(topics) == 0 {
		return fmt.Errorf("kafka consumer: no topics specified")
	}
	c.groupID = groupID

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(c.cfg.Brokers, ","),
		"group.id":           c.groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false",
	}
	if c.cfg.Protocol != "" {
		_ = configMap.SetKey("security.protocol", c.cfg.Protocol)
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
		return fmt.Errorf("failed to subscribe to topics %v for group %s: %w", topics, groupID, err)
	}

	log.Printf("kafka consumer started: group %s, topics %v", groupID, topics)

	for {
		select {
		case <-ctx.Done():
			log.Printf("kafka consumer: context canceled for group %s, shutting down", groupID)
			return nil
		default:
			ev := c.consumer.Poll(1000)
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				if err := handler(ctx, e); err != nil {
					log.Printf("kafka consumer: handler error (group %s, topic %s, offset %v): %v",
						groupID, *e.TopicPartition.Topic, e.TopicPartition.Offset, err)
					continue
				}
				if _, err := c.consumer.CommitMessage(e); err != nil {
					log.Printf("kafka consumer: commit failed (group %s, offset %v): %v", groupID, e.TopicPartition.Offset, err)
				}
			case kafka.Error:
				if e.IsFatal() {
					log.Printf("kafka consumer: fatal error for group %s: %v", groupID, e)
					return e
				}
				log.Printf("kafka consumer: error for group %s: %v", groupID, e)
			case kafka.AssignedPartitions:
				c.consumer.Assign(e.Partitions)
			case kafka.RevokedPartitions:
				c.consumer.Unassign()
			}
		}
	}
}

// Close closes the Kafka consumer.
func (c *confluentKafkaConsumer) Close() {
	if c.consumer != nil {
		if err := c.consumer.Close(); err != nil {
			log.Printf("kafka consumer: close failed for group %s: %v", c.groupID, err)
		}
		c.consumer = nil
	}
}
