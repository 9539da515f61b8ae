package broadcast

import (
	"context"
	"errors"
	"fmt"

	"freight/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp.Channel the transport uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQTransport publishes to a topic exchange with the channel name as
// routing key.
type RabbitMQTransport struct {
	conn     *amqp.Connection
	ch       Publisher
	exchange string
}

var _ ports.Transport = (*RabbitMQTransport)(nil)

// DialRabbitMQ connects, opens a channel and declares the durable exchange.
func DialRabbitMQ(url, exchange string) (*RabbitMQTransport, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open rabbitmq channel: %w", err), conn.Close())
	}
	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("declare exchange %s: %w", exchange, err), ch.Close(), conn.Close())
	}
	return &RabbitMQTransport{conn: conn, ch: ch, exchange: exchange}, nil
}

func NewRabbitMQTransportWithPublisher(p Publisher, exchange string) *RabbitMQTransport {
	return &RabbitMQTransport{ch: p, exchange: exchange}
}

func (t *RabbitMQTransport) Publish(ctx context.Context, msg ports.BroadcastMessage) error {
	body, err := encode(msg)
	if err != nil {
		return err
	}
	return t.ch.PublishWithContext(ctx, t.exchange, msg.Channel, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.EventID.String(),
		Type:         string(msg.Event),
		Body:         body,
	})
}

func (t *RabbitMQTransport) Close() error {
	err := t.ch.Close()
	if t.conn != nil {
		err = errors.Join(err, t.conn.Close())
	}
	return err
}
