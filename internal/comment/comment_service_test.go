package comment

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

type fakeRepository struct {
	comments map[string]*Comment
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{comments: make(map[string]*Comment)}
}

func (r *fakeRepository) Create(_ context.Context, c *Comment) error {
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeRepository) FindByID(_ context.Context, id string) (*Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeRepository) ListByPost(_ context.Context, postID string) ([]Comment, error) {
	var out []Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

type fakePosts map[string]string

func (p fakePosts) AuthorOf(_ context.Context, postID string) (string, bool, error) {
	author, ok := p[postID]
	return author, ok, nil
}

type recordingNotifier struct {
	notified []string
}

func (n *recordingNotifier) CommentCreated(_ context.Context, recipientID, actorID, postID string) {
	n.notified = append(n.notified, recipientID+"/"+actorID+"/"+postID)
}

func TestCreateComment(t *testing.T) {
	repo := newFakeRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, fakePosts{"p1": "author1"}, notifier)

	created, err := svc.Create(context.Background(), "u1", "p1", CreateCommentRequest{Text: "so sweet"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Text != "so sweet" || created.PostID != "p1" || created.AuthorID != "u1" {
		t.Errorf("unexpected comment %+v", created)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != "author1/u1/p1" {
		t.Errorf("expected post author notified, got %v", notifier.notified)
	}
}

func TestCreateCommentUnknownPost(t *testing.T) {
	svc := NewService(newFakeRepository(), fakePosts{}, nil)

	if _, err := svc.Create(context.Background(), "u1", "missing", CreateCommentRequest{Text: "hi"}); err != ErrPostNotFound {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCreateCommentOwnPostNoNotification(t *testing.T) {
	repo := newFakeRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, fakePosts{"p1": "u1"}, notifier)

	if _, err := svc.Create(context.Background(), "u1", "p1", CreateCommentRequest{Text: "note to self"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(notifier.notified) != 0 {
		t.Errorf("self comment must not notify, got %v", notifier.notified)
	}
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakePosts{"p1": "author1"}, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", "p1", CreateCommentRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, "intruder", created.ID); err != ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", created.ID); err != nil {
		t.Errorf("author delete failed: %v", err)
	}
	if err := svc.Delete(ctx, "u1", created.ID); err != ErrCommentNotFound {
		t.Errorf("expected ErrCommentNotFound after delete, got %v", err)
	}
}
