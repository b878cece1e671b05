package vote

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the direction of a vote.
type Kind string

const (
	KindUp   Kind = "up"
	KindDown Kind = "down"
)

// Opposite returns the other direction.
func (k Kind) Opposite() Kind {
	if k == KindUp {
		return KindDown
	}
	return KindUp
}

func (k Kind) Valid() bool {
	return k == KindUp || k == KindDown
}

// Membership is the persisted fact that a user has cast a vote of a
// given kind on a post. The composite unique index makes duplicate
// adds fail closed instead of duplicating rows.
type Membership struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_vote_post_user_kind" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_vote_post_user_kind" json:"user_id"`
	Kind      Kind      `gorm:"type:varchar(8);not null;uniqueIndex:idx_vote_post_user_kind" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func (Membership) TableName() string {
	return "vote_memberships"
}

// Voter is the wire form of a membership holder.
type Voter struct {
	ID string `json:"id"`
}

// Tally is the projected state of one (post, kind) counter: the count
// and the voters ordered by when they voted.
type Tally struct {
	Count  int     `json:"count"`
	Voters []Voter `json:"voters"`
}

// UpvotePayload is pushed to upvote subscribers after every
// state-changing upvote mutation.
type UpvotePayload struct {
	PostID   string  `json:"postId"`
	Upvotes  int     `json:"upvotes"`
	Upvoters []Voter `json:"upvoters"`
}

// DownvotePayload is the downvote counterpart.
type DownvotePayload struct {
	PostID     string  `json:"postId"`
	Downvotes  int     `json:"downvotes"`
	Downvoters []Voter `json:"downvoters"`
}

// Topic returns the pub/sub routing key for one (post, kind) counter.
// Upvotes and downvotes use separate channels.
func Topic(postID string, kind Kind) string {
	return fmt.Sprintf("votes:%s:%s", postID, kind)
}

// TopicPattern matches every vote topic. The realtime hub subscribes
// with this pattern and routes by exact topic.
const TopicPattern = "votes:*"

// ParseTopic splits a vote topic back into post ID and kind.
func ParseTopic(topic string) (postID string, kind Kind, ok bool) {
	rest, found := strings.CutPrefix(topic, "votes:")
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return "", "", false
	}
	postID, kind = rest[:i], Kind(rest[i+1:])
	if !kind.Valid() {
		return "", "", false
	}
	return postID, kind, true
}
