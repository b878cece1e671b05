package post

import (
	"time"

	"dikenang-service/internal/user"
)

// Post types. Private posts are visible only inside the author's
// relationship.
const (
	TypePublic  = "public"
	TypePrivate = "private"
)

type Post struct {
	ID             string      `gorm:"type:uuid;primaryKey" json:"id"`
	Caption        string      `gorm:"not null" json:"caption"`
	Type           string      `gorm:"type:varchar(16);not null;default:public" json:"type"`
	AuthorID       string      `gorm:"type:uuid;not null" json:"author_id"`
	Author         user.User   `gorm:"foreignKey:AuthorID" json:"author"`
	RelationshipID *string     `gorm:"type:uuid" json:"relationship_id,omitempty"`
	Attachment     *Attachment `gorm:"foreignKey:PostID" json:"attachment,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// Attachment is a blob stored in MinIO and linked to a post. Image
// attachments also carry a generated thumbnail.
type Attachment struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID       string    `gorm:"type:uuid;not null" json:"post_id"`
	Kind         string    `gorm:"type:varchar(16);not null" json:"kind"`
	URI          string    `gorm:"not null" json:"uri"`
	ThumbnailURI string    `json:"thumbnail_uri,omitempty"`
	ObjectKey    string    `gorm:"not null" json:"-"`
	ThumbnailKey string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}

type CreatePostRequest struct {
	Caption string `form:"caption" binding:"required,max=1000"`
	Type    string `form:"type"`
}
