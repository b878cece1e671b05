package relationship

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dikenang-service/internal/user"
)

var errMemberTaken = errors.New("a member is already linked")

type Repository interface {
	CreateInvite(ctx context.Context, inv *Invite) error
	FindInvite(ctx context.Context, id string) (*Invite, error)
	UpdateInviteStatus(ctx context.Context, id, status string) error
	ListInvitesFor(ctx context.Context, userID string) ([]Invite, error)
	// Link creates the relationship and binds both users to it in one
	// transaction. Fails with errMemberTaken if either user is
	// already linked.
	Link(ctx context.Context, rel *Relationship, memberA, memberB string) error
	// Unlink deletes the relationship and clears it from all members.
	Unlink(ctx context.Context, relationshipID string) error
	FindByID(ctx context.Context, id string) (*Relationship, error)
	MembersOf(ctx context.Context, relationshipID string) ([]user.User, error)
	RelationshipOf(ctx context.Context, userID string) (*string, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateInvite(ctx context.Context, inv *Invite) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *gormRepository) FindInvite(ctx context.Context, id string) (*Invite, error) {
	var inv Invite
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *gormRepository) UpdateInviteStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&Invite{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *gormRepository) ListInvitesFor(ctx context.Context, userID string) ([]Invite, error) {
	var invites []Invite
	err := r.db.WithContext(ctx).
		Where("to_id = ? AND status = ?", userID, StatusPending).
		Order("created_at desc").
		Find(&invites).Error
	return invites, err
}

func (r *gormRepository) Link(ctx context.Context, rel *Relationship, memberA, memberB string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rel).Error; err != nil {
			return err
		}
		for _, member := range []string{memberA, memberB} {
			res := tx.Model(&user.User{}).
				Where("id = ? AND relationship_id IS NULL", member).
				Update("relationship_id", rel.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return errMemberTaken
			}
		}
		return nil
	})
}

func (r *gormRepository) Unlink(ctx context.Context, relationshipID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user.User{}).
			Where("relationship_id = ?", relationshipID).
			Update("relationship_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&Relationship{}, "id = ?", relationshipID).Error
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*Relationship, error) {
	var rel Relationship
	if err := r.db.WithContext(ctx).First(&rel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *gormRepository) MembersOf(ctx context.Context, relationshipID string) ([]user.User, error) {
	var members []user.User
	err := r.db.WithContext(ctx).
		Where("relationship_id = ?", relationshipID).
		Find(&members).Error
	return members, err
}

func (r *gormRepository) RelationshipOf(ctx context.Context, userID string) (*string, error) {
	var u user.User
	err := r.db.WithContext(ctx).Select("relationship_id").First(&u, "id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return u.RelationshipID, nil
}

func (r *gormRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}
