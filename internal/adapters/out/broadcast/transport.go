// Package broadcast delivers dispatcher messages to the external pub/sub
// system and keeps the channel subscriber directory.
//
// Every transport sends the same JSON body, ports.BroadcastMessage, and uses
// the channel name as the routing unit (redis channel, kafka key, amqp
// routing key) so consumers see a channel's messages in publish order.
package broadcast

import (
	"encoding/json"
	"fmt"
	"strings"

	"freight/internal/core/ports"

	"go.uber.org/zap"
)

// Drivers accepted by Open.
const (
	DriverRedis    = "redis"
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
	DriverLog      = "log"
)

// Options configures Open. Only the fields of the chosen driver are read.
type Options struct {
	Driver string

	RedisAddr     string
	RedisPassword string
	ChannelPrefix string

	KafkaBrokers []string
	KafkaTopic   string

	RabbitMQURL      string
	RabbitMQExchange string
}

// Open builds the transport named by opts.Driver.
func Open(opts Options, logger *zap.Logger) (ports.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverRedis:
		return NewRedisTransport(NewRedisClient(opts.RedisAddr, opts.RedisPassword), opts.ChannelPrefix), nil
	case DriverKafka:
		return NewKafkaTransport(opts.KafkaBrokers, opts.KafkaTopic), nil
	case DriverRabbitMQ:
		return DialRabbitMQ(opts.RabbitMQURL, opts.RabbitMQExchange)
	case DriverLog, "":
		return NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unknown broadcast driver %q", opts.Driver)
	}
}

func encode(msg ports.BroadcastMessage) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode broadcast message for %s: %w", msg.Channel, err)
	}
	return b, nil
}
