// Package pubsub provides the topic-keyed event bus that carries live
// counter updates from mutation handlers to the realtime gateway.
// Delivery is best-effort to currently subscribed listeners only; there
// is no durable log and no replay.
package pubsub

import "context"

// Event is a published payload tagged with its routing topic.
type Event struct {
	Topic   string
	Payload []byte
}

// Publisher is the write side of the bus. Mutation services depend on
// this interface only, so tests can substitute an in-memory bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber is the read side. Pattern supports a single trailing "*"
// wildcard ("votes:*"). The returned cancel func stops delivery and
// closes the channel.
type Subscriber interface {
	Subscribe(ctx context.Context, pattern string) (<-chan Event, func(), error)
}

// Bus combines both sides.
type Bus interface {
	Publisher
	Subscriber
}
