package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListFor(ctx context.Context, userID string, limit int) ([]Notification, error)
	// MarkRead flips the flag, scoped to the recipient. Returns
	// gorm.ErrRecordNotFound when the row is missing or not theirs.
	MarkRead(ctx context.Context, id, userID string) error
	CountPostsBy(ctx context.Context, userID string) (int64, error)
	// CountReceivedUpvotes counts upvote memberships across every
	// post the user authored.
	CountReceivedUpvotes(ctx context.Context, userID string) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *gormRepository) ListFor(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *gormRepository) MarkRead(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) CountPostsBy(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("posts").
		Where("author_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) CountReceivedUpvotes(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("vote_memberships").
		Joins("JOIN posts ON posts.id = vote_memberships.post_id").
		Where("posts.author_id = ? AND vote_memberships.kind = ?", userID, "up").
		Count(&count).Error
	return count, err
}
