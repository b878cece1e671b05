package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	"dikenang-service/pkg/logger"
)

// Producer publishes activity events to Kafka. Every emit is
// fire-and-forget: a broker outage is logged and swallowed, mutations
// never wait on or fail because of the notification pipeline.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Version = sarama.V2_0_0_0
	cfg.ClientID = "dikenang-service"

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Producer{producer: producer, topic: topic, log: log}, nil
}

func (p *Producer) VoteCast(_ context.Context, recipientID, actorID, postID, kind string) {
	p.emit(Event{
		Kind:        EventVoteCast,
		RecipientID: recipientID,
		ActorID:     actorID,
		PostID:      postID,
		VoteKind:    kind,
	})
}

func (p *Producer) CommentCreated(_ context.Context, recipientID, actorID, postID string) {
	p.emit(Event{
		Kind:        EventCommentCreated,
		RecipientID: recipientID,
		ActorID:     actorID,
		PostID:      postID,
	})
}

func (p *Producer) PostCreated(_ context.Context, authorID, postID string) {
	p.emit(Event{
		Kind:        EventPostCreated,
		RecipientID: authorID,
		ActorID:     authorID,
		PostID:      postID,
	})
}

func (p *Producer) emit(ev Event) {
	ev.CreatedAt = time.Now().UTC()

	go func() {
		value, err := json.Marshal(ev)
		if err != nil {
			p.log.Error("failed to marshal notification event", "kind", ev.Kind, "error", err)
			return
		}
		// Key by recipient so one user's notifications stay ordered
		// within a partition.
		_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(ev.RecipientID),
			Value: sarama.ByteEncoder(value),
		})
		if err != nil {
			p.log.Error("failed to produce notification event", "kind", ev.Kind, "error", err)
		}
	}()
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
