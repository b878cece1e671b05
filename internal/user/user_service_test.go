package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type fakeRepository struct {
	users  map[string]*User // keyed by ID
	badges map[string][]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:  make(map[string]*User),
		badges: make(map[string][]string),
	}
}

func (f *fakeRepository) Create(ctx context.Context, u *User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Update(ctx context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepository) FindBadge(ctx context.Context, code string) (*Badge, error) {
	return &Badge{Code: code}, nil
}

func (f *fakeRepository) AwardBadge(ctx context.Context, userID, badgeCode string) error {
	f.badges[userID] = append(f.badges[userID], badgeCode)
	return nil
}

func (f *fakeRepository) SeedBadges(ctx context.Context, badges []Badge) error {
	return nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, "test-secret", time.Hour)
}

func register(t *testing.T, svc Service, username, email string) *ProfileResponse {
	t.Helper()
	profile, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    email,
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return profile
}

func TestRegisterNormalizesIdentity(t *testing.T) {
	svc := newTestService(newFakeRepository())

	profile := register(t, svc, "  Ayu ", "Ayu@Example.COM")

	if profile.Username != "ayu" {
		t.Fatalf("expected lowercased username, got %q", profile.Username)
	}
	if profile.Email != "ayu@example.com" {
		t.Fatalf("expected lowercased email, got %q", profile.Email)
	}
	if profile.DisplayName != "Ayu" {
		t.Fatalf("expected title-cased display name, got %q", profile.DisplayName)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newFakeRepository())

	register(t, svc, "ayu", "ayu@example.com")
	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "other",
		Email:    "ayu@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(newFakeRepository())
	profile := register(t, svc, "ayu", "ayu@example.com")

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ayu@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != profile.ID {
		t.Fatalf("expected sub %q, got %v", profile.ID, claims["sub"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(newFakeRepository())
	register(t, svc, "ayu", "ayu@example.com")

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ayu@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := newTestService(newFakeRepository())
	profile := register(t, svc, "ayu", "ayu@example.com")

	updated, err := svc.UpdateProfile(context.Background(), profile.ID, UpdateProfileRequest{
		Bio: "collector of small moments",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Bio != "collector of small moments" {
		t.Fatalf("bio not updated: %q", updated.Bio)
	}
	if updated.DisplayName != profile.DisplayName {
		t.Fatalf("display name should be untouched, got %q", updated.DisplayName)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.GetProfile(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
