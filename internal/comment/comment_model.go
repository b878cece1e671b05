package comment

import (
	"time"

	"dikenang-service/internal/user"
)

type Comment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    string    `gorm:"type:uuid;not null" json:"post_id"`
	AuthorID  string    `gorm:"type:uuid;not null" json:"author_id"`
	Author    user.User `gorm:"foreignKey:AuthorID" json:"author"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}
