package user

import "time"

// User is an account on the platform.
type User struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURI      string    `json:"avatar_uri,omitempty"`
	RelationshipID *string   `gorm:"type:uuid" json:"relationship_id,omitempty"`
	Badges         []Badge   `gorm:"many2many:user_badges" json:"badges,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Badge is a cosmetic award shown on a profile. The catalog is seeded
// at startup; memberships live in the user_badges join table.
type Badge struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string `gorm:"uniqueIndex;not null" json:"code"`
	Label      string `json:"label"`
	Variant    string `json:"variant"`
	Border     string `json:"border"`
	Background string `json:"background"`
	Color      string `json:"color"`
}

func (Badge) TableName() string {
	return "badges"
}

// Badge codes awarded by the notification worker.
const (
	BadgeFirstPost     = "first-post"
	BadgeCrowdFavorite = "crowd-favorite"
)

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURI   string `json:"avatar_uri"`
}

type ProfileResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURI      string    `json:"avatar_uri,omitempty"`
	RelationshipID *string   `json:"relationship_id,omitempty"`
	Badges         []Badge   `json:"badges"`
	CreatedAt      time.Time `json:"created_at"`
}
