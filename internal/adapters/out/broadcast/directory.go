package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"

	"github.com/go-redis/redis/v8"
)

// subscriber is the stored form of a principal.
type subscriber struct {
	UserID    kernel.UUID `json:"user_id"`
	CompanyID kernel.UUID `json:"company_id"`
	Role      kernel.Role `json:"role"`
}

func toSubscriber(p kernel.Principal) subscriber {
	return subscriber{UserID: p.UserID(), CompanyID: p.CompanyID(), Role: p.Role()}
}

func (s subscriber) principal() (kernel.Principal, error) {
	return kernel.NewPrincipal(s.UserID, s.CompanyID, s.Role)
}

// RedisDirectory keeps one hash per channel, field user id, value the
// subscriber. Keys expire ttl after the last subscription.
type RedisDirectory struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ ports.SubscriberDirectory = (*RedisDirectory)(nil)

func NewRedisDirectory(client redis.Cmdable, prefix string, ttl time.Duration) *RedisDirectory {
	return &RedisDirectory{client: client, prefix: prefix, ttl: ttl}
}

func (d *RedisDirectory) key(channel string) string {
	return d.prefix + "subscribers:" + channel
}

func (d *RedisDirectory) Subscribe(ctx context.Context, channel string, p kernel.Principal) error {
	body, err := json.Marshal(toSubscriber(p))
	if err != nil {
		return err
	}
	key := d.key(channel)
	_, err = d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, p.UserID().String(), body)
		if d.ttl > 0 {
			pipe.Expire(ctx, key, d.ttl)
		}
		return nil
	})
	return err
}

func (d *RedisDirectory) Unsubscribe(ctx context.Context, channel string, userID kernel.UUID) error {
	return d.client.HDel(ctx, d.key(channel), userID.String()).Err()
}

func (d *RedisDirectory) Subscribers(ctx context.Context, channel string) ([]kernel.Principal, error) {
	values, err := d.client.HVals(ctx, d.key(channel)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]kernel.Principal, 0, len(values))
	for _, v := range values {
		var s subscriber
		if err = json.Unmarshal([]byte(v), &s); err != nil {
			return nil, fmt.Errorf("decode subscriber of %s: %w", channel, err)
		}
		p, err := s.principal()
		if err != nil {
			return nil, fmt.Errorf("subscriber of %s: %w", channel, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// MemoryDirectory is a process-local directory for single-node runs and tests.
type MemoryDirectory struct {
	mu   sync.RWMutex
	subs map[string]map[kernel.UUID]kernel.Principal
}

var _ ports.SubscriberDirectory = (*MemoryDirectory)(nil)

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{subs: make(map[string]map[kernel.UUID]kernel.Principal)}
}

func (d *MemoryDirectory) Subscribe(_ context.Context, channel string, p kernel.Principal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subs[channel] == nil {
		d.subs[channel] = make(map[kernel.UUID]kernel.Principal)
	}
	d.subs[channel][p.UserID()] = p
	return nil
}

func (d *MemoryDirectory) Unsubscribe(_ context.Context, channel string, userID kernel.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs[channel], userID)
	return nil
}

func (d *MemoryDirectory) Subscribers(_ context.Context, channel string) ([]kernel.Principal, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]kernel.Principal, 0, len(d.subs[channel]))
	for _, p := range d.subs[channel] {
		out = append(out, p)
	}
	return out, nil
}
