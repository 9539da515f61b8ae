package broadcast

import (
	"context"

	"freight/internal/core/ports"

	"github.com/go-redis/redis/v8"
)

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// RedisTransport publishes each message on the redis channel of the same name,
// which is what socket servers following the Laravel redis broadcaster expect.
type RedisTransport struct {
	client redis.Cmdable
	closer func() error
	prefix string
}

var _ ports.Transport = (*RedisTransport)(nil)

func NewRedisTransport(client *redis.Client, prefix string) *RedisTransport {
	return &RedisTransport{client: client, closer: client.Close, prefix: prefix}
}

// NewRedisTransportWithClient uses any redis.Cmdable; Close is a no-op.
func NewRedisTransportWithClient(client redis.Cmdable, prefix string) *RedisTransport {
	return &RedisTransport{client: client, closer: func() error { return nil }, prefix: prefix}
}

func (t *RedisTransport) Publish(ctx context.Context, msg ports.BroadcastMessage) error {
	body, err := encode(msg)
	if err != nil {
		return err
	}
	return t.client.Publish(ctx, t.prefix+msg.Channel, body).Err()
}

func (t *RedisTransport) Close() error {
	return t.closer()
}
