package comment

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	Delete(ctx context.Context, id string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, c *Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&comments).Error
	return comments, err
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Comment{}, "id = ?", id).Error
}
