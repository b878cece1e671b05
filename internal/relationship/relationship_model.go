package relationship

import (
	"time"

	"dikenang-service/internal/user"
)

// Relationship links exactly two users. A user belongs to at most one
// relationship at a time.
type Relationship struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(16);not null;default:couple" json:"type"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Relationship) TableName() string {
	return "relationships"
}

// Invite statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Invite is a pending partner request. Accepting it creates the
// relationship.
type Invite struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	FromID    string    `gorm:"type:uuid;not null" json:"from_id"`
	ToID      string    `gorm:"type:uuid;not null" json:"to_id"`
	Status    string    `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invite) TableName() string {
	return "relationship_invites"
}

type InviteRequest struct {
	PartnerID string `json:"partner_id" binding:"required,uuid"`
	Title     string `json:"title"`
}

type RelationshipResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Title     string      `json:"title,omitempty"`
	Members   []user.User `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
}
