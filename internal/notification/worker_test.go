package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"

	"dikenang-service/pkg/logger"
)

type fakeRepository struct {
	mu            sync.Mutex
	notifications []Notification
	postCounts    map[string]int64
	upvoteCounts  map[string]int64
	failCreate    bool
}

func (f *fakeRepository) Create(ctx context.Context, n *Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("connection refused")
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeRepository) ListFor(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	return nil
}

func (f *fakeRepository) CountPostsBy(ctx context.Context, userID string) (int64, error) {
	return f.postCounts[userID], nil
}

func (f *fakeRepository) CountReceivedUpvotes(ctx context.Context, userID string) (int64, error) {
	return f.upvoteCounts[userID], nil
}

type recordingAwarder struct {
	mu     sync.Mutex
	awards []string
}

func (r *recordingAwarder) AwardBadge(ctx context.Context, userID, badgeCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awards = append(r.awards, userID+":"+badgeCode)
	return nil
}

func newTestWorker(repo *fakeRepository, badges *recordingAwarder) *Worker {
	return &Worker{repo: repo, badges: badges, log: logger.NewNop()}
}

func marshalEvent(t *testing.T, ev Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return b
}

func TestHandleVoteCastStoresNotification(t *testing.T) {
	repo := &fakeRepository{postCounts: map[string]int64{}, upvoteCounts: map[string]int64{}}
	badges := &recordingAwarder{}
	w := newTestWorker(repo, badges)

	ev := Event{Kind: EventVoteCast, RecipientID: "author-1", ActorID: "voter-1", PostID: "post-1", VoteKind: "up"}
	if err := w.handle(context.Background(), marshalEvent(t, ev)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.notifications))
	}
	n := repo.notifications[0]
	if n.RecipientID != "author-1" || n.ActorID != "voter-1" || n.Kind != EventVoteCast {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.Read {
		t.Fatal("new notification should be unread")
	}
}

func TestHandleCommentCreatedStoresNotification(t *testing.T) {
	repo := &fakeRepository{postCounts: map[string]int64{}, upvoteCounts: map[string]int64{}}
	w := newTestWorker(repo, &recordingAwarder{})

	ev := Event{Kind: EventCommentCreated, RecipientID: "author-1", ActorID: "commenter-1", PostID: "post-1"}
	if err := w.handle(context.Background(), marshalEvent(t, ev)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(repo.notifications) != 1 || repo.notifications[0].Kind != EventCommentCreated {
		t.Fatalf("unexpected notifications: %+v", repo.notifications)
	}
}

func TestHandleFirstPostAwardsBadge(t *testing.T) {
	repo := &fakeRepository{postCounts: map[string]int64{"author-1": 1}, upvoteCounts: map[string]int64{}}
	badges := &recordingAwarder{}
	w := newTestWorker(repo, badges)

	ev := Event{Kind: EventPostCreated, RecipientID: "author-1", ActorID: "author-1"}
	if err := w.handle(context.Background(), marshalEvent(t, ev)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(badges.awards) != 1 || badges.awards[0] != "author-1:first-post" {
		t.Fatalf("unexpected awards: %v", badges.awards)
	}
	if len(repo.notifications) != 0 {
		t.Fatalf("post.created should not write a notification row, got %+v", repo.notifications)
	}
}

func TestHandleSecondPostDoesNotAward(t *testing.T) {
	repo := &fakeRepository{postCounts: map[string]int64{"author-1": 2}, upvoteCounts: map[string]int64{}}
	badges := &recordingAwarder{}
	w := newTestWorker(repo, badges)

	ev := Event{Kind: EventPostCreated, RecipientID: "author-1", ActorID: "author-1"}
	if err := w.handle(context.Background(), marshalEvent(t, ev)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(badges.awards) != 0 {
		t.Fatalf("unexpected awards: %v", badges.awards)
	}
}

func TestHandleCrowdFavoriteAtThreshold(t *testing.T) {
	repo := &fakeRepository{
		postCounts:   map[string]int64{},
		upvoteCounts: map[string]int64{"author-1": crowdFavoriteThreshold},
	}
	badges := &recordingAwarder{}
	w := newTestWorker(repo, badges)

	ev := Event{Kind: EventVoteCast, RecipientID: "author-1", ActorID: "voter-1", PostID: "post-1", VoteKind: "up"}
	if err := w.handle(context.Background(), marshalEvent(t, ev)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(badges.awards) != 1 || badges.awards[0] != "author-1:crowd-favorite" {
		t.Fatalf("unexpected awards: %v", badges.awards)
	}
}

func TestHandleDownvoteSkipsBadgeCheck(t *testing.T) {
	repo := &fakeRepository{
		postCounts:   map[string]int64{},
		upvoteCounts: map[string]int64{"author-1": crowdFavoriteThreshold},
	}
	badges := &recordingAwarder{}
	w := newTestWorker(repo, badges)

	ev := Event{Kind: EventVoteCast, RecipientID: "author-1", ActorID: "voter-1", PostID: "post-1", VoteKind: "down"}
	if err := w.handle(context.Background(), marshalEvent(t, ev)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(badges.awards) != 0 {
		t.Fatalf("downvote should not trigger badge check, got %v", badges.awards)
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	w := newTestWorker(&fakeRepository{}, &recordingAwarder{})
	err := w.handle(context.Background(), []byte("not json"))
	if !errors.Is(err, errMalformedEvent) {
		t.Fatalf("expected errMalformedEvent, got %v", err)
	}
}

func TestHandleStoreFailureSurfaces(t *testing.T) {
	repo := &fakeRepository{failCreate: true}
	w := newTestWorker(repo, &recordingAwarder{})

	ev := Event{Kind: EventCommentCreated, RecipientID: "author-1", ActorID: "commenter-1", PostID: "post-1"}
	if err := w.handle(context.Background(), marshalEvent(t, ev)); err == nil {
		t.Fatal("expected error when the store is down")
	}
}

// scriptedReader feeds a fixed message sequence and then reports a
// cancelled context, recording which offsets were committed.
type scriptedReader struct {
	msgs      []kafka.Message
	fetched   int
	committed []int64
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.fetched >= len(r.msgs) {
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[r.fetched]
	r.fetched++
	return m, nil
}

func (r *scriptedReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func TestRunCommitsHandledEvents(t *testing.T) {
	repo := &fakeRepository{postCounts: map[string]int64{}, upvoteCounts: map[string]int64{}}
	ev := Event{Kind: EventCommentCreated, RecipientID: "author-1", ActorID: "commenter-1", PostID: "post-1"}
	reader := &scriptedReader{msgs: []kafka.Message{{Offset: 7, Value: marshalEvent(t, ev)}}}
	w := &Worker{reader: reader, repo: repo, badges: &recordingAwarder{}, log: logger.NewNop()}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(reader.committed) != 1 || reader.committed[0] != 7 {
		t.Fatalf("expected offset 7 committed, got %v", reader.committed)
	}
}

func TestRunLeavesFailedEventsUncommitted(t *testing.T) {
	repo := &fakeRepository{failCreate: true}
	ev := Event{Kind: EventCommentCreated, RecipientID: "author-1", ActorID: "commenter-1", PostID: "post-1"}
	reader := &scriptedReader{msgs: []kafka.Message{{Offset: 3, Value: marshalEvent(t, ev)}}}
	w := &Worker{reader: reader, repo: repo, badges: &recordingAwarder{}, log: logger.NewNop()}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(reader.committed) != 0 {
		t.Fatalf("failed event must stay uncommitted for redelivery, got %v", reader.committed)
	}
}

func TestRunCommitsMalformedEvents(t *testing.T) {
	reader := &scriptedReader{msgs: []kafka.Message{{Offset: 12, Value: []byte("not json")}}}
	w := &Worker{reader: reader, repo: &fakeRepository{}, badges: &recordingAwarder{}, log: logger.NewNop()}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(reader.committed) != 1 || reader.committed[0] != 12 {
		t.Fatalf("malformed event should be committed past, got %v", reader.committed)
	}
}
