package vote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dikenang-service/internal/pubsub"
	"dikenang-service/pkg/logger"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrUnavailable  = errors.New("vote store unavailable")
)

// PostDirectory is the only capability the vote service needs from the
// post subsystem.
type PostDirectory interface {
	// AuthorOf reports the post's author, or found=false when the
	// post does not exist.
	AuthorOf(ctx context.Context, postID string) (authorID string, found bool, err error)
}

// Notifier receives fire-and-forget vote activity for the
// notification pipeline. Implementations must not block.
type Notifier interface {
	VoteCast(ctx context.Context, recipientID, actorID, postID, kind string)
}

type Service interface {
	AddUpvote(ctx context.Context, postID, userID string) (int, error)
	RemoveUpvote(ctx context.Context, postID, userID string) (int, error)
	AddDownvote(ctx context.Context, postID, userID string) (int, error)
	RemoveDownvote(ctx context.Context, postID, userID string) (int, error)
	// Tally projects the current counter for one (post, kind).
	Tally(ctx context.Context, postID string, kind Kind) (*Tally, error)
}

type service struct {
	repo     Repository
	posts    PostDirectory
	bus      pubsub.Publisher
	notifier Notifier
	log      *logger.Logger
}

func NewService(repo Repository, posts PostDirectory, bus pubsub.Publisher, notifier Notifier, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		posts:    posts,
		bus:      bus,
		notifier: notifier,
		log:      log,
	}
}

func (s *service) AddUpvote(ctx context.Context, postID, userID string) (int, error) {
	return s.add(ctx, postID, userID, KindUp)
}

func (s *service) AddDownvote(ctx context.Context, postID, userID string) (int, error) {
	return s.add(ctx, postID, userID, KindDown)
}

func (s *service) RemoveUpvote(ctx context.Context, postID, userID string) (int, error) {
	return s.remove(ctx, postID, userID, KindUp)
}

func (s *service) RemoveDownvote(ctx context.Context, postID, userID string) (int, error) {
	return s.remove(ctx, postID, userID, KindDown)
}

// add inserts the membership, retracting the opposite kind in the same
// transaction so a user never holds both directions at once. Events go
// out only after the commit, and only for counters that actually
// changed: the added kind, plus the opposite kind when a switch
// retracted it. Duplicate adds change nothing and publish nothing.
func (s *service) add(ctx context.Context, postID, userID string, kind Kind) (int, error) {
	authorID, found, err := s.posts.AuthorOf(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !found {
		return 0, ErrPostNotFound
	}

	added, retracted, err := s.repo.Add(ctx, postID, userID, kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	count, err := s.repo.Count(ctx, postID, kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if added {
		s.publish(ctx, postID, kind)
		if s.notifier != nil && authorID != userID {
			s.notifier.VoteCast(ctx, authorID, userID, postID, string(kind))
		}
	}
	if retracted {
		s.publish(ctx, postID, kind.Opposite())
	}

	return count, nil
}

func (s *service) remove(ctx context.Context, postID, userID string, kind Kind) (int, error) {
	_, found, err := s.posts.AuthorOf(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !found {
		return 0, ErrPostNotFound
	}

	removed, err := s.repo.Remove(ctx, postID, userID, kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	count, err := s.repo.Count(ctx, postID, kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if removed {
		s.publish(ctx, postID, kind)
	}
	return count, nil
}

func (s *service) Tally(ctx context.Context, postID string, kind Kind) (*Tally, error) {
	count, err := s.repo.Count(ctx, postID, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	voters, err := s.repo.Voters(ctx, postID, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if voters == nil {
		voters = []Voter{}
	}
	return &Tally{Count: count, Voters: voters}, nil
}

// publish pushes the freshly projected counter to the topic for one
// (post, kind). A failed publish is logged and swallowed: a missed
// live update must never fail a vote that already committed.
func (s *service) publish(ctx context.Context, postID string, kind Kind) {
	tally, err := s.Tally(ctx, postID, kind)
	if err != nil {
		s.log.Error("failed to project tally for publish", "post_id", postID, "kind", kind, "error", err)
		return
	}

	var body interface{}
	if kind == KindUp {
		body = UpvotePayload{PostID: postID, Upvotes: tally.Count, Upvoters: tally.Voters}
	} else {
		body = DownvotePayload{PostID: postID, Downvotes: tally.Count, Downvoters: tally.Voters}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		s.log.Error("failed to marshal vote payload", "post_id", postID, "kind", kind, "error", err)
		return
	}

	if err := s.bus.Publish(ctx, Topic(postID, kind), payload); err != nil {
		s.log.Error("failed to publish vote event", "post_id", postID, "kind", kind, "error", err)
	}
}
