package vote

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"dikenang-service/internal/pubsub"
	"dikenang-service/pkg/logger"
)

// fakeRepository mirrors the SQL semantics: set-valued membership with
// a (post, user, kind) uniqueness constraint and opposite-kind
// retraction inside Add.
type fakeRepository struct {
	mu      sync.Mutex
	entries []Membership
	failing bool
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func (r *fakeRepository) Add(_ context.Context, postID, userID string, kind Kind) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return false, false, fakeErr("store down")
	}

	retracted := r.deleteLocked(postID, userID, kind.Opposite())
	for _, m := range r.entries {
		if m.PostID == postID && m.UserID == userID && m.Kind == kind {
			return false, retracted, nil
		}
	}
	r.entries = append(r.entries, Membership{
		PostID:    postID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now(),
	})
	return true, retracted, nil
}

func (r *fakeRepository) Remove(_ context.Context, postID, userID string, kind Kind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return false, fakeErr("store down")
	}
	return r.deleteLocked(postID, userID, kind), nil
}

func (r *fakeRepository) deleteLocked(postID, userID string, kind Kind) bool {
	for i, m := range r.entries {
		if m.PostID == postID && m.UserID == userID && m.Kind == kind {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *fakeRepository) Count(_ context.Context, postID string, kind Kind) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return 0, fakeErr("store down")
	}
	count := 0
	for _, m := range r.entries {
		if m.PostID == postID && m.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepository) Voters(_ context.Context, postID string, kind Kind) ([]Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, fakeErr("store down")
	}
	var matched []Membership
	for _, m := range r.entries {
		if m.PostID == postID && m.Kind == kind {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	voters := make([]Voter, 0, len(matched))
	for _, m := range matched {
		voters = append(voters, Voter{ID: m.UserID})
	}
	return voters, nil
}

type fakePosts struct {
	authors map[string]string
}

func (p *fakePosts) AuthorOf(_ context.Context, postID string) (string, bool, error) {
	author, ok := p.authors[postID]
	return author, ok, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository, *pubsub.MemoryBus) {
	t.Helper()
	repo := &fakeRepository{}
	posts := &fakePosts{authors: map[string]string{"p1": "author1", "p2": "author2"}}
	bus := pubsub.NewMemoryBus()
	svc := NewService(repo, posts, bus, nil, logger.NewNop())
	return svc, repo, bus
}

func subscribeTopic(t *testing.T, bus *pubsub.MemoryBus, topic string) (<-chan pubsub.Event, func()) {
	t.Helper()
	ch, cancel, err := bus.Subscribe(context.Background(), topic)
	if err != nil {
		t.Fatalf("subscribe %s: %v", topic, err)
	}
	return ch, cancel
}

func recvPayload(t *testing.T, ch <-chan pubsub.Event) []byte {
	t.Helper()
	select {
	case ev := <-ch:
		return ev.Payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertSilent(t *testing.T, ch <-chan pubsub.Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event on %s: %s", ev.Topic, ev.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAddUpvoteFirstVote(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	ch, cancel := subscribeTopic(t, bus, Topic("p1", KindUp))
	defer cancel()

	count, err := svc.AddUpvote(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("AddUpvote: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	var payload UpvotePayload
	if err := json.Unmarshal(recvPayload(t, ch), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Upvotes != 1 {
		t.Errorf("expected 1 upvote in payload, got %d", payload.Upvotes)
	}
	if len(payload.Upvoters) != 1 || payload.Upvoters[0].ID != "u1" {
		t.Errorf("expected upvoters [{u1}], got %v", payload.Upvoters)
	}
}

func TestAddUpvoteIdempotent(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddUpvote(ctx, "p1", "u1"); err != nil {
		t.Fatalf("first AddUpvote: %v", err)
	}

	ch, cancel := subscribeTopic(t, bus, Topic("p1", KindUp))
	defer cancel()

	count, err := svc.AddUpvote(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("second AddUpvote: %v", err)
	}
	if count != 1 {
		t.Errorf("duplicate add must keep count at 1, got %d", count)
	}
	// Pinned policy: no-op mutations publish nothing.
	assertSilent(t, ch)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	before, err := svc.Tally(ctx, "p1", KindUp)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}

	if _, err := svc.AddUpvote(ctx, "p1", "u1"); err != nil {
		t.Fatalf("AddUpvote: %v", err)
	}
	count, err := svc.RemoveUpvote(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("RemoveUpvote: %v", err)
	}
	if count != before.Count {
		t.Errorf("expected count back to %d, got %d", before.Count, count)
	}
}

func TestRemoveUpvoteIdempotent(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	ch, cancel := subscribeTopic(t, bus, Topic("p1", KindUp))
	defer cancel()

	count, err := svc.RemoveUpvote(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("RemoveUpvote on empty set: %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
	assertSilent(t, ch)
}

func TestMutualExclusionKindSwitch(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddUpvote(ctx, "p1", "u1"); err != nil {
		t.Fatalf("AddUpvote: %v", err)
	}

	upCh, cancelUp := subscribeTopic(t, bus, Topic("p1", KindUp))
	defer cancelUp()
	downCh, cancelDown := subscribeTopic(t, bus, Topic("p1", KindDown))
	defer cancelDown()

	// Downvoting while an upvoter retracts the upvote atomically.
	count, err := svc.AddDownvote(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("AddDownvote: %v", err)
	}
	if count != 1 {
		t.Errorf("expected downvote count 1, got %d", count)
	}

	up, err := svc.Tally(ctx, "p1", KindUp)
	if err != nil {
		t.Fatalf("Tally up: %v", err)
	}
	if up.Count != 0 {
		t.Errorf("upvote must be retracted on switch, count=%d", up.Count)
	}

	// Both counters changed, so both topics get an update.
	var downPayload DownvotePayload
	if err := json.Unmarshal(recvPayload(t, downCh), &downPayload); err != nil {
		t.Fatalf("unmarshal down payload: %v", err)
	}
	if downPayload.Downvotes != 1 {
		t.Errorf("expected 1 downvote in payload, got %d", downPayload.Downvotes)
	}

	var upPayload UpvotePayload
	if err := json.Unmarshal(recvPayload(t, upCh), &upPayload); err != nil {
		t.Fatalf("unmarshal up payload: %v", err)
	}
	if upPayload.Upvotes != 0 {
		t.Errorf("expected 0 upvotes in payload after switch, got %d", upPayload.Upvotes)
	}
}

func TestTopicIsolation(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	chP1, cancel := subscribeTopic(t, bus, Topic("p1", KindUp))
	defer cancel()

	if _, err := svc.AddUpvote(ctx, "p2", "u1"); err != nil {
		t.Fatalf("AddUpvote p2: %v", err)
	}
	assertSilent(t, chP1)
}

func TestAddUpvoteUnknownPost(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.AddUpvote(context.Background(), "missing", "u1"); err != ErrPostNotFound {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestVotersOrderedAndMultipleUsersCommute(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, u := range []string{"u1", "u2", "u3"} {
		if _, err := svc.AddUpvote(ctx, "p1", u); err != nil {
			t.Fatalf("AddUpvote %s: %v", u, err)
		}
	}

	tally, err := svc.Tally(ctx, "p1", KindUp)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	if tally.Count != 3 || len(tally.Voters) != 3 {
		t.Fatalf("expected 3 voters, got count=%d voters=%v", tally.Count, tally.Voters)
	}
	for i, want := range []string{"u1", "u2", "u3"} {
		if tally.Voters[i].ID != want {
			t.Errorf("voter %d: expected %s, got %s", i, want, tally.Voters[i].ID)
		}
	}
}

func TestStoreOutageSurfacesUnavailable(t *testing.T) {
	repo := &fakeRepository{failing: true}
	posts := &fakePosts{authors: map[string]string{"p1": "author1"}}
	svc := NewService(repo, posts, pubsub.NewMemoryBus(), nil, logger.NewNop())

	_, err := svc.AddUpvote(context.Background(), "p1", "u1")
	if err == nil {
		t.Fatal("expected error when store is down")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

type failingBus struct{}

func (failingBus) Publish(context.Context, string, []byte) error {
	return fakeErr("broker down")
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	repo := &fakeRepository{}
	posts := &fakePosts{authors: map[string]string{"p1": "author1"}}
	svc := NewService(repo, posts, failingBus{}, nil, logger.NewNop())

	count, err := svc.AddUpvote(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatalf("mutation must succeed despite publish failure: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	casts []string
}

func (n *recordingNotifier) VoteCast(_ context.Context, recipientID, actorID, postID, kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.casts = append(n.casts, recipientID+"/"+actorID+"/"+postID+"/"+kind)
}

func TestNotifierSkipsSelfVotes(t *testing.T) {
	repo := &fakeRepository{}
	posts := &fakePosts{authors: map[string]string{"p1": "author1"}}
	notifier := &recordingNotifier{}
	svc := NewService(repo, posts, pubsub.NewMemoryBus(), notifier, logger.NewNop())
	ctx := context.Background()

	if _, err := svc.AddUpvote(ctx, "p1", "author1"); err != nil {
		t.Fatalf("self vote: %v", err)
	}
	if _, err := svc.AddUpvote(ctx, "p1", "u2"); err != nil {
		t.Fatalf("other vote: %v", err)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.casts) != 1 {
		t.Fatalf("expected 1 notification, got %v", notifier.casts)
	}
	if notifier.casts[0] != "author1/u2/p1/up" {
		t.Errorf("unexpected notification %s", notifier.casts[0])
	}
}
