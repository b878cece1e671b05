package post

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dikenang-service/internal/user"
)

type Repository interface {
	Create(ctx context.Context, p *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	ListPublic(ctx context.Context, limit, offset int) ([]Post, error)
	ListByRelationship(ctx context.Context, relationshipID string) ([]Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	Delete(ctx context.Context, id string) error
	// AuthorOf satisfies the vote service's PostDirectory capability.
	AuthorOf(ctx context.Context, postID string) (string, bool, error)
	// RelationshipOf reports the viewer's relationship, used for
	// private post visibility checks.
	RelationshipOf(ctx context.Context, userID string) (*string, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Attachment").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListPublic(ctx context.Context, limit, offset int) ([]Post, error) {
	var posts []Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Attachment").
		Where("type = ?", TypePublic).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *gormRepository) ListByRelationship(ctx context.Context, relationshipID string) ([]Post, error) {
	var posts []Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Attachment").
		Where("relationship_id = ?", relationshipID).
		Order("created_at desc").
		Find(&posts).Error
	return posts, err
}

func (r *gormRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Post{}, "id = ?", id).Error
	})
}

func (r *gormRepository) AuthorOf(ctx context.Context, postID string) (string, bool, error) {
	var p Post
	err := r.db.WithContext(ctx).Select("author_id").First(&p, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.AuthorID, true, nil
}

func (r *gormRepository) RelationshipOf(ctx context.Context, userID string) (*string, error) {
	var u user.User
	err := r.db.WithContext(ctx).Select("relationship_id").First(&u, "id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return u.RelationshipID, nil
}
