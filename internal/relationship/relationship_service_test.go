package relationship

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"dikenang-service/internal/user"
)

type fakeRepository struct {
	invites       map[string]*Invite
	relationships map[string]*Relationship
	userRels      map[string]*string
	users         map[string]bool
}

func newFakeRepository(users ...string) *fakeRepository {
	r := &fakeRepository{
		invites:       make(map[string]*Invite),
		relationships: make(map[string]*Relationship),
		userRels:      make(map[string]*string),
		users:         make(map[string]bool),
	}
	for _, u := range users {
		r.users[u] = true
	}
	return r
}

func (r *fakeRepository) CreateInvite(_ context.Context, inv *Invite) error {
	cp := *inv
	r.invites[inv.ID] = &cp
	return nil
}

func (r *fakeRepository) FindInvite(_ context.Context, id string) (*Invite, error) {
	inv, ok := r.invites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeRepository) UpdateInviteStatus(_ context.Context, id, status string) error {
	if inv, ok := r.invites[id]; ok {
		inv.Status = status
	}
	return nil
}

func (r *fakeRepository) ListInvitesFor(_ context.Context, userID string) ([]Invite, error) {
	var out []Invite
	for _, inv := range r.invites {
		if inv.ToID == userID && inv.Status == StatusPending {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeRepository) Link(_ context.Context, rel *Relationship, memberA, memberB string) error {
	if r.userRels[memberA] != nil || r.userRels[memberB] != nil {
		return errMemberTaken
	}
	cp := *rel
	r.relationships[rel.ID] = &cp
	id := rel.ID
	r.userRels[memberA] = &id
	r.userRels[memberB] = &id
	return nil
}

func (r *fakeRepository) Unlink(_ context.Context, relationshipID string) error {
	for uid, relID := range r.userRels {
		if relID != nil && *relID == relationshipID {
			r.userRels[uid] = nil
		}
	}
	delete(r.relationships, relationshipID)
	return nil
}

func (r *fakeRepository) FindByID(_ context.Context, id string) (*Relationship, error) {
	rel, ok := r.relationships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rel, nil
}

func (r *fakeRepository) MembersOf(_ context.Context, relationshipID string) ([]user.User, error) {
	var members []user.User
	for uid, relID := range r.userRels {
		if relID != nil && *relID == relationshipID {
			members = append(members, user.User{ID: uid})
		}
	}
	return members, nil
}

func (r *fakeRepository) RelationshipOf(_ context.Context, userID string) (*string, error) {
	return r.userRels[userID], nil
}

func (r *fakeRepository) UserExists(_ context.Context, userID string) (bool, error) {
	return r.users[userID], nil
}

func TestInviteAcceptLinksBothUsers(t *testing.T) {
	repo := newFakeRepository("u1", "u2")
	svc := NewService(repo)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "u1", InviteRequest{PartnerID: "u2"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	rel, err := svc.Accept(ctx, "u2", inv.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(rel.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(rel.Members))
	}

	for _, u := range []string{"u1", "u2"} {
		got, _ := repo.RelationshipOf(ctx, u)
		if got == nil || *got != rel.ID {
			t.Errorf("user %s not linked to relationship", u)
		}
	}
}

func TestAcceptByWrongUser(t *testing.T) {
	repo := newFakeRepository("u1", "u2", "u3")
	svc := NewService(repo)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "u1", InviteRequest{PartnerID: "u2"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if _, err := svc.Accept(ctx, "u3", inv.ID); err != ErrNotInvitee {
		t.Errorf("expected ErrNotInvitee, got %v", err)
	}
}

func TestInviteWhileLinked(t *testing.T) {
	repo := newFakeRepository("u1", "u2", "u3")
	svc := NewService(repo)
	ctx := context.Background()

	inv, _ := svc.Invite(ctx, "u1", InviteRequest{PartnerID: "u2"})
	if _, err := svc.Accept(ctx, "u2", inv.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if _, err := svc.Invite(ctx, "u1", InviteRequest{PartnerID: "u3"}); err != ErrAlreadyLinked {
		t.Errorf("expected ErrAlreadyLinked, got %v", err)
	}
}

func TestSelfInvite(t *testing.T) {
	svc := NewService(newFakeRepository("u1"))

	if _, err := svc.Invite(context.Background(), "u1", InviteRequest{PartnerID: "u1"}); err != ErrSelfInvite {
		t.Errorf("expected ErrSelfInvite, got %v", err)
	}
}

func TestUnlinkClearsBothMembers(t *testing.T) {
	repo := newFakeRepository("u1", "u2")
	svc := NewService(repo)
	ctx := context.Background()

	inv, _ := svc.Invite(ctx, "u1", InviteRequest{PartnerID: "u2"})
	if _, err := svc.Accept(ctx, "u2", inv.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := svc.Unlink(ctx, "u1"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	for _, u := range []string{"u1", "u2"} {
		if relID, _ := repo.RelationshipOf(ctx, u); relID != nil {
			t.Errorf("user %s still linked after unlink", u)
		}
	}
	if _, err := svc.Get(ctx, "u1"); err != ErrNotLinked {
		t.Errorf("expected ErrNotLinked after unlink, got %v", err)
	}
}

func TestAcceptSettledInvite(t *testing.T) {
	repo := newFakeRepository("u1", "u2")
	svc := NewService(repo)
	ctx := context.Background()

	inv, _ := svc.Invite(ctx, "u1", InviteRequest{PartnerID: "u2"})
	if err := svc.Decline(ctx, "u2", inv.ID); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if _, err := svc.Accept(ctx, "u2", inv.ID); err != ErrInviteSettled {
		t.Errorf("expected ErrInviteSettled, got %v", err)
	}
}
