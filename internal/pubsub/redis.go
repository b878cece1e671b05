package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisBus carries events over Redis pub/sub so every service instance
// sees mutations made on any other instance.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, pattern string) (<-chan Event, func(), error) {
	ps := b.client.PSubscribe(ctx, pattern)
	// Force the subscription onto the wire before returning so callers
	// do not miss events published immediately after Subscribe.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, err
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			out <- Event{Topic: msg.Channel, Payload: []byte(msg.Payload)}
		}
	}()

	cancel := func() { ps.Close() }
	return out, cancel, nil
}
