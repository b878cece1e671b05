package notification

import "time"

// Event kinds on the Kafka stream.
const (
	EventPostCreated    = "post.created"
	EventVoteCast       = "vote.cast"
	EventCommentCreated = "comment.created"
)

// Event is the Kafka record produced by mutation services and consumed
// by the worker.
type Event struct {
	Kind        string    `json:"kind"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	PostID      string    `json:"post_id"`
	VoteKind    string    `json:"vote_kind,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification is an in-app notification row written by the worker.
type Notification struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID string    `gorm:"type:uuid;not null" json:"recipient_id"`
	ActorID     string    `gorm:"type:uuid;not null" json:"actor_id"`
	Kind        string    `gorm:"type:varchar(32);not null" json:"kind"`
	PostID      string    `gorm:"type:uuid" json:"post_id,omitempty"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
