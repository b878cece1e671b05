package pubsub

import (
	"context"
	"strings"
	"sync"
)

const subscriberBuffer = 64

// MemoryBus is a single-process Bus. It backs tests and single-node
// deployments; production uses the Redis bus so updates cross
// instances.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[*memorySub]struct{}
}

type memorySub struct {
	pattern string
	ch      chan Event
	once    sync.Once
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[*memorySub]struct{})}
}

// Publish fans the event out to every matching subscriber. A slow
// subscriber whose buffer is full misses the event rather than
// blocking the publisher.
func (b *MemoryBus) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !topicMatches(sub.pattern, topic) {
			continue
		}
		select {
		case sub.ch <- Event{Topic: topic, Payload: payload}:
		default:
		}
	}
	return nil
}

// SubscriberCount reports how many subscriptions are active.
func (b *MemoryBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *MemoryBus) Subscribe(_ context.Context, pattern string) (<-chan Event, func(), error) {
	sub := &memorySub{
		pattern: pattern,
		ch:      make(chan Event, subscriberBuffer),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
		sub.once.Do(func() { close(sub.ch) })
	}
	return sub.ch, cancel, nil
}

func topicMatches(pattern, topic string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(topic, prefix)
	}
	return pattern == topic
}
