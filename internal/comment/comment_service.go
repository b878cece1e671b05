package comment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("not the comment author")
)

// PostDirectory is the post-existence capability.
type PostDirectory interface {
	AuthorOf(ctx context.Context, postID string) (authorID string, found bool, err error)
}

// Notifier receives fire-and-forget comment activity.
type Notifier interface {
	CommentCreated(ctx context.Context, recipientID, actorID, postID string)
}

type Service interface {
	Create(ctx context.Context, authorID, postID string, req CreateCommentRequest) (*Comment, error)
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	Delete(ctx context.Context, callerID, commentID string) error
}

type service struct {
	repo     Repository
	posts    PostDirectory
	notifier Notifier
}

func NewService(repo Repository, posts PostDirectory, notifier Notifier) Service {
	return &service{repo: repo, posts: posts, notifier: notifier}
}

func (s *service) Create(ctx context.Context, authorID, postID string, req CreateCommentRequest) (*Comment, error) {
	postAuthor, found, err := s.posts.AuthorOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPostNotFound
	}

	c := &Comment{
		ID:       uuid.New().String(),
		PostID:   postID,
		AuthorID: authorID,
		Text:     req.Text,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if s.notifier != nil && postAuthor != authorID {
		s.notifier.CommentCreated(ctx, postAuthor, authorID, postID)
	}

	return s.repo.FindByID(ctx, c.ID)
}

func (s *service) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	_, found, err := s.posts.AuthorOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPostNotFound
	}

	comments, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

func (s *service) Delete(ctx context.Context, callerID, commentID string) error {
	c, err := s.repo.FindByID(ctx, commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if c.AuthorID != callerID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, commentID)
}
