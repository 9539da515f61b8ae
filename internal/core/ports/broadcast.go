package ports

import (
	"context"
	"encoding/json"

	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
)

// BroadcastMessage is one event on one channel, addressed to the users that
// passed the channel authorizer.
type BroadcastMessage struct {
	Channel    string          `json:"channel"`
	Event      event.Kind      `json:"event"`
	EventID    kernel.UUID     `json:"event_id"`
	Data       json.RawMessage `json:"data"`
	Recipients []kernel.UUID   `json:"recipients"`
}

// Transport hands messages to the external pub/sub system.
type Transport interface {
	Publish(ctx context.Context, msg BroadcastMessage) error
	Close() error
}

// SubscriberDirectory remembers which principals subscribed to which channel.
type SubscriberDirectory interface {
	Subscribe(ctx context.Context, channel string, p kernel.Principal) error
	Unsubscribe(ctx context.Context, channel string, userID kernel.UUID) error
	Subscribers(ctx context.Context, channel string) ([]kernel.Principal, error)
}
