package referral

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaRecorder publishes clicks as JSON messages keyed by slug.
type KafkaRecorder struct {
	writer messageWriter
}

// NewKafkaRecorder creates a producer for the given topic.
func NewKafkaRecorder(brokers []string, topic string) *KafkaRecorder {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaRecorder{writer: w}
}

func (k *KafkaRecorder) Record(ctx context.Context, click Click) error {
	msg, err := clickMessage(click)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish referral click: %w", err)
	}
	return nil
}

func (k *KafkaRecorder) Close() error {
	return k.writer.Close()
}

// clickMessage keys by slug so one slug's clicks stay on one partition.
func clickMessage(click Click) (kafkago.Message, error) {
	data, err := json.Marshal(click)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize referral click: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(click.Slug),
		Value: data,
		Time:  click.At,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte("referral_click")},
			{Key: "event_id", Value: []byte(click.ID)},
		},
	}, nil
}
