package relationship

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInviteNotFound = errors.New("invite not found")
	ErrNotInvitee     = errors.New("invite addressed to someone else")
	ErrInviteSettled  = errors.New("invite already settled")
	ErrSelfInvite     = errors.New("cannot invite yourself")
	ErrAlreadyLinked  = errors.New("user already in a relationship")
	ErrNotLinked      = errors.New("user not in a relationship")
)

type Service interface {
	Invite(ctx context.Context, fromID string, req InviteRequest) (*Invite, error)
	Accept(ctx context.Context, callerID, inviteID string) (*RelationshipResponse, error)
	Decline(ctx context.Context, callerID, inviteID string) error
	PendingInvites(ctx context.Context, userID string) ([]Invite, error)
	// Get returns the caller's relationship, with both members.
	Get(ctx context.Context, callerID string) (*RelationshipResponse, error)
	Unlink(ctx context.Context, callerID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Invite(ctx context.Context, fromID string, req InviteRequest) (*Invite, error) {
	if fromID == req.PartnerID {
		return nil, ErrSelfInvite
	}

	exists, err := s.repo.UserExists(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	for _, id := range []string{fromID, req.PartnerID} {
		relID, err := s.repo.RelationshipOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if relID != nil {
			return nil, ErrAlreadyLinked
		}
	}

	inv := &Invite{
		ID:     uuid.New().String(),
		FromID: fromID,
		ToID:   req.PartnerID,
		Status: StatusPending,
	}
	if err := s.repo.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) Accept(ctx context.Context, callerID, inviteID string) (*RelationshipResponse, error) {
	inv, err := s.repo.FindInvite(ctx, inviteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	if inv.ToID != callerID {
		return nil, ErrNotInvitee
	}
	if inv.Status != StatusPending {
		return nil, ErrInviteSettled
	}

	rel := &Relationship{
		ID:   uuid.New().String(),
		Type: "couple",
	}
	if err := s.repo.Link(ctx, rel, inv.FromID, inv.ToID); err != nil {
		if errors.Is(err, errMemberTaken) {
			return nil, ErrAlreadyLinked
		}
		return nil, err
	}

	if err := s.repo.UpdateInviteStatus(ctx, inviteID, StatusAccepted); err != nil {
		return nil, err
	}

	return s.respond(ctx, rel)
}

func (s *service) Decline(ctx context.Context, callerID, inviteID string) error {
	inv, err := s.repo.FindInvite(ctx, inviteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInviteNotFound
	}
	if err != nil {
		return err
	}
	if inv.ToID != callerID {
		return ErrNotInvitee
	}
	if inv.Status != StatusPending {
		return ErrInviteSettled
	}
	return s.repo.UpdateInviteStatus(ctx, inviteID, StatusDeclined)
}

func (s *service) PendingInvites(ctx context.Context, userID string) ([]Invite, error) {
	invites, err := s.repo.ListInvitesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if invites == nil {
		invites = []Invite{}
	}
	return invites, nil
}

func (s *service) Get(ctx context.Context, callerID string) (*RelationshipResponse, error) {
	relID, err := s.repo.RelationshipOf(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if relID == nil {
		return nil, ErrNotLinked
	}

	rel, err := s.repo.FindByID(ctx, *relID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, rel)
}

func (s *service) Unlink(ctx context.Context, callerID string) error {
	relID, err := s.repo.RelationshipOf(ctx, callerID)
	if err != nil {
		return err
	}
	if relID == nil {
		return ErrNotLinked
	}
	return s.repo.Unlink(ctx, *relID)
}

func (s *service) respond(ctx context.Context, rel *Relationship) (*RelationshipResponse, error) {
	members, err := s.repo.MembersOf(ctx, rel.ID)
	if err != nil {
		return nil, err
	}
	return &RelationshipResponse{
		ID:        rel.ID,
		Type:      rel.Type,
		Title:     rel.Title,
		Members:   members,
		CreatedAt: rel.CreatedAt,
	}, nil
}
