package vote

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists vote memberships. Add and Remove report whether
// they actually changed state so the service can decide what to
// publish.
type Repository interface {
	// Add inserts the membership and, in the same transaction,
	// retracts any membership of the opposite kind held by the same
	// user. A duplicate add is absorbed by the unique index and
	// reported as added=false.
	Add(ctx context.Context, postID, userID string, kind Kind) (added, retracted bool, err error)
	// Remove deletes the membership if present.
	Remove(ctx context.Context, postID, userID string, kind Kind) (removed bool, err error)
	Count(ctx context.Context, postID string, kind Kind) (int, error)
	// Voters lists membership holders ordered by when they voted.
	Voters(ctx context.Context, postID string, kind Kind) ([]Voter, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Add(ctx context.Context, postID, userID string, kind Kind) (added, retracted bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind.Opposite()).
			Delete(&Membership{})
		if del.Error != nil {
			return del.Error
		}
		retracted = del.RowsAffected > 0

		m := &Membership{
			ID:     uuid.New().String(),
			PostID: postID,
			UserID: userID,
			Kind:   kind,
		}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(m)
		if ins.Error != nil {
			return ins.Error
		}
		added = ins.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return added, retracted, nil
}

func (r *gormRepository) Remove(ctx context.Context, postID, userID string, kind Kind) (bool, error) {
	del := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind).
		Delete(&Membership{})
	if del.Error != nil {
		return false, del.Error
	}
	return del.RowsAffected > 0, nil
}

func (r *gormRepository) Count(ctx context.Context, postID string, kind Kind) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Membership{}).
		Where("post_id = ? AND kind = ?", postID, kind).
		Count(&count).Error
	return int(count), err
}

func (r *gormRepository) Voters(ctx context.Context, postID string, kind Kind) ([]Voter, error) {
	var memberships []Membership
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND kind = ?", postID, kind).
		Order("created_at asc").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	voters := make([]Voter, 0, len(memberships))
	for _, m := range memberships {
		voters = append(voters, Voter{ID: m.UserID})
	}
	return voters, nil
}
