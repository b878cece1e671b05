package user

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	FindBadge(ctx context.Context, code string) (*Badge, error)
	AwardBadge(ctx context.Context, userID, badgeCode string) error
	SeedBadges(ctx context.Context, badges []Badge) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Preload("Badges").First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) Update(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *gormRepository) FindBadge(ctx context.Context, code string) (*Badge, error) {
	var b Badge
	if err := r.db.WithContext(ctx).First(&b, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// AwardBadge attaches the badge to the user. Awarding a badge the user
// already holds is a no-op.
func (r *gormRepository) AwardBadge(ctx context.Context, userID, badgeCode string) error {
	badge, err := r.FindBadge(ctx, badgeCode)
	if err != nil {
		return err
	}
	u := User{ID: userID}
	return r.db.WithContext(ctx).Model(&u).Association("Badges").Append(badge)
}

// SeedBadges inserts the badge catalog, skipping codes that already
// exist.
func (r *gormRepository) SeedBadges(ctx context.Context, badges []Badge) error {
	if len(badges) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&badges).Error
}
