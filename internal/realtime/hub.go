package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"dikenang-service/internal/pubsub"
	"dikenang-service/internal/vote"
	"dikenang-service/pkg/logger"
)

type subscription struct {
	client *Client
	topic  string
}

// frame is what a connected client receives: the topic the update
// belongs to and the counter payload as published on the bus.
type frame struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// Hub fans vote counter updates out to WebSocket clients. Each client
// subscribes to individual vote topics; updates for a topic reach only
// the clients subscribed to it. All maps are owned by the Run goroutine,
// so membership changes flow through the channels.
type Hub struct {
	clients      map[*Client]bool
	topicClients map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription

	bus pubsub.Subscriber
	log *logger.Logger
}

func NewHub(bus pubsub.Subscriber, log *logger.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		topicClients: make(map[string]map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		subscribe:    make(chan subscription),
		unsubscribe:  make(chan subscription),
		bus:          bus,
		log:          log,
	}
}

// Run subscribes to the vote topic pattern and serves clients until the
// context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	events, cancel, err := h.bus.Subscribe(ctx, vote.TopicPattern)
	if err != nil {
		return fmt.Errorf("failed to subscribe to vote updates: %w", err)
	}
	defer cancel()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("client connected", "user_id", client.userID)

		case client := <-h.unregister:
			h.dropClient(client)

		case sub := <-h.subscribe:
			h.addSubscription(sub)

		case sub := <-h.unsubscribe:
			h.removeSubscription(sub)

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			h.deliver(ev)

		case <-ctx.Done():
			h.log.Info("realtime hub shutting down")
			return nil
		}
	}
}

func (h *Hub) addSubscription(sub subscription) {
	if !h.clients[sub.client] {
		return
	}
	if h.topicClients[sub.topic] == nil {
		h.topicClients[sub.topic] = make(map[*Client]bool)
	}
	h.topicClients[sub.topic][sub.client] = true
	sub.client.topics[sub.topic] = true
}

func (h *Hub) removeSubscription(sub subscription) {
	if clients := h.topicClients[sub.topic]; clients != nil {
		delete(clients, sub.client)
		if len(clients) == 0 {
			delete(h.topicClients, sub.topic)
		}
	}
	delete(sub.client.topics, sub.topic)
}

func (h *Hub) dropClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	for topic := range client.topics {
		h.removeSubscription(subscription{client: client, topic: topic})
	}
	close(client.send)
	h.log.Info("client disconnected", "user_id", client.userID)
}

// deliver pushes an update to every subscriber of its topic. Delivery
// never blocks the hub: a client whose send buffer is full is dropped.
func (h *Hub) deliver(ev pubsub.Event) {
	clients := h.topicClients[ev.Topic]
	if len(clients) == 0 {
		return
	}

	msg, err := json.Marshal(frame{Topic: ev.Topic, Data: ev.Payload})
	if err != nil {
		h.log.Error("failed to encode update", "topic", ev.Topic, "error", err)
		return
	}

	var slow []*Client
	for client := range clients {
		select {
		case client.send <- msg:
		default:
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.log.Warn("dropping slow client", "user_id", client.userID, "topic", ev.Topic)
		h.dropClient(client)
	}
}
