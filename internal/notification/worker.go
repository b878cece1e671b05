package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"dikenang-service/internal/user"
	"dikenang-service/pkg/logger"
)

const crowdFavoriteThreshold = 100

// errMalformedEvent marks payloads that can never be processed; they
// are committed rather than left to poison the partition.
var errMalformedEvent = errors.New("malformed event")

// BadgeAwarder is the capability to hand out milestone badges.
// user.Service satisfies it.
type BadgeAwarder interface {
	AwardBadge(ctx context.Context, userID, badgeCode string) error
}

// messageReader is the slice of kafka.Reader the worker drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Worker consumes the activity stream, writes in-app notification rows
// and awards milestone badges. It runs as its own process within a
// consumer group. Offsets are committed only after an event is handled,
// so events that failed on transient errors are redelivered.
type Worker struct {
	reader messageReader
	repo   Repository
	badges BadgeAwarder
	log    *logger.Logger
}

func NewWorker(brokers []string, topic, group string, repo Repository, badges BadgeAwarder, log *logger.Logger) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Worker{reader: reader, repo: repo, badges: badges, log: log}
}

// Run consumes until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := w.handle(ctx, msg.Value); err != nil {
			w.log.Error("failed to handle notification event", "error", err, "offset", msg.Offset)
			if !errors.Is(err, errMalformedEvent) {
				// Leave the offset uncommitted so the group
				// redelivers the event after a restart or rebalance.
				continue
			}
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			w.log.Error("failed to commit offset", "error", err, "offset", msg.Offset)
		}
	}
}

// handle processes one event. Badge checks run after the notification
// row is written; a failed award is logged and retried on the next
// qualifying event rather than blocking the stream.
func (w *Worker) handle(ctx context.Context, value []byte) error {
	var ev Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	switch ev.Kind {
	case EventVoteCast, EventCommentCreated:
		n := &Notification{
			ID:          uuid.New().String(),
			RecipientID: ev.RecipientID,
			ActorID:     ev.ActorID,
			Kind:        ev.Kind,
			PostID:      ev.PostID,
		}
		if err := w.repo.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to store notification: %w", err)
		}
		if ev.Kind == EventVoteCast && ev.VoteKind == "up" {
			w.checkCrowdFavorite(ctx, ev.RecipientID)
		}

	case EventPostCreated:
		w.checkFirstPost(ctx, ev.RecipientID)

	default:
		w.log.Warn("unknown event kind", "kind", ev.Kind)
	}
	return nil
}

func (w *Worker) checkFirstPost(ctx context.Context, userID string) {
	count, err := w.repo.CountPostsBy(ctx, userID)
	if err != nil {
		w.log.Error("failed to count posts", "user_id", userID, "error", err)
		return
	}
	if count == 1 {
		if err := w.badges.AwardBadge(ctx, userID, user.BadgeFirstPost); err != nil {
			w.log.Error("failed to award badge", "badge", user.BadgeFirstPost, "user_id", userID, "error", err)
		}
	}
}

func (w *Worker) checkCrowdFavorite(ctx context.Context, userID string) {
	count, err := w.repo.CountReceivedUpvotes(ctx, userID)
	if err != nil {
		w.log.Error("failed to count received upvotes", "user_id", userID, "error", err)
		return
	}
	if count >= crowdFavoriteThreshold {
		if err := w.badges.AwardBadge(ctx, userID, user.BadgeCrowdFavorite); err != nil {
			w.log.Error("failed to award badge", "badge", user.BadgeCrowdFavorite, "user_id", userID, "error", err)
		}
	}
}

func (w *Worker) Close() error {
	return w.reader.Close()
}
