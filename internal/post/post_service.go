package post

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dikenang-service/pkg/logger"
)

var (
	ErrNotFound    = errors.New("post not found")
	ErrForbidden   = errors.New("not the post author")
	ErrInvalidType = errors.New("invalid post type")
	ErrNoAudience  = errors.New("private posts require a relationship")
)

// Notifier receives fire-and-forget post activity for the
// notification pipeline.
type Notifier interface {
	PostCreated(ctx context.Context, authorID, postID string)
}

type Service interface {
	CreatePost(ctx context.Context, authorID string, req CreatePostRequest, upload *Upload) (*Post, error)
	GetPost(ctx context.Context, viewerID, postID string) (*Post, error)
	PublicFeed(ctx context.Context, limit, offset int) ([]Post, error)
	// RelationshipFeed lists the viewer's private memories.
	RelationshipFeed(ctx context.Context, viewerID string) ([]Post, error)
	DeletePost(ctx context.Context, callerID, postID string) error
}

type service struct {
	repo        Repository
	attachments *attachmentStore
	notifier    Notifier
	log         *logger.Logger
}

func NewService(repo Repository, blobs BlobStore, notifier Notifier, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		attachments: newAttachmentStore(blobs, log),
		notifier:    notifier,
		log:         log,
	}
}

func (s *service) CreatePost(ctx context.Context, authorID string, req CreatePostRequest, upload *Upload) (*Post, error) {
	postType := req.Type
	if postType == "" {
		postType = TypePublic
	}
	if postType != TypePublic && postType != TypePrivate {
		return nil, ErrInvalidType
	}

	p := &Post{
		ID:       uuid.New().String(),
		Caption:  req.Caption,
		Type:     postType,
		AuthorID: authorID,
	}

	if postType == TypePrivate {
		relID, err := s.repo.RelationshipOf(ctx, authorID)
		if err != nil {
			return nil, err
		}
		if relID == nil {
			return nil, ErrNoAudience
		}
		p.RelationshipID = relID
	}

	if upload != nil {
		att, err := s.attachments.save(ctx, p.ID, upload)
		if err != nil {
			return nil, err
		}
		p.Attachment = att
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// Orphaned blobs are cleaned up here, not left for a GC pass.
		if p.Attachment != nil {
			s.attachments.remove(ctx, p.Attachment)
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PostCreated(ctx, authorID, p.ID)
	}

	return s.repo.FindByID(ctx, p.ID)
}

func (s *service) GetPost(ctx context.Context, viewerID, postID string) (*Post, error) {
	p, err := s.repo.FindByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Type == TypePrivate && p.AuthorID != viewerID {
		relID, err := s.repo.RelationshipOf(ctx, viewerID)
		if err != nil || relID == nil || p.RelationshipID == nil || *relID != *p.RelationshipID {
			// Private posts are invisible to outsiders, not forbidden.
			return nil, ErrNotFound
		}
	}
	return p, nil
}

func (s *service) PublicFeed(ctx context.Context, limit, offset int) ([]Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	posts, err := s.repo.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

func (s *service) RelationshipFeed(ctx context.Context, viewerID string) ([]Post, error) {
	relID, err := s.repo.RelationshipOf(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if relID == nil {
		return []Post{}, nil
	}
	posts, err := s.repo.ListByRelationship(ctx, *relID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

func (s *service) DeletePost(ctx context.Context, callerID, postID string) error {
	p, err := s.repo.FindByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if p.AuthorID != callerID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}
	if p.Attachment != nil {
		s.attachments.remove(ctx, p.Attachment)
	}
	return nil
}
