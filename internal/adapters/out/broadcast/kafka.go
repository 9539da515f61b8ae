package broadcast

import (
	"context"

	"freight/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// Writer is the part of kafka.Writer the transport uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTransport writes every message to one topic keyed by channel name, so
// a channel always lands on the same partition.
type KafkaTransport struct {
	writer Writer
}

var _ ports.Transport = (*KafkaTransport)(nil)

func NewKafkaTransport(brokers []string, topic string) *KafkaTransport {
	return NewKafkaTransportWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	})
}

func NewKafkaTransportWithWriter(w Writer) *KafkaTransport {
	return &KafkaTransport{writer: w}
}

func (t *KafkaTransport) Publish(ctx context.Context, msg ports.BroadcastMessage) error {
	body, err := encode(msg)
	if err != nil {
		return err
	}
	return t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Channel),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(msg.Event)},
			{Key: "event_id", Value: []byte(msg.EventID.String())},
		},
	})
}

func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}
