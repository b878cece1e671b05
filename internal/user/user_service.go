package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*ProfileResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetProfile(ctx context.Context, userID string) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*ProfileResponse, error)
	AwardBadge(ctx context.Context, userID, badgeCode string) error
	SeedBadgeCatalog(ctx context.Context) error
}

type service struct {
	repo      Repository
	jwtSecret string
	jwtExpire time.Duration
	titling   cases.Caser
}

func NewService(repo Repository, jwtSecret string, jwtExpire time.Duration) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
		jwtExpire: jwtExpire,
		titling:   cases.Title(language.English),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*ProfileResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	display := strings.TrimSpace(req.DisplayName)
	if display == "" {
		display = username
	}

	u := &User{
		ID:          uuid.New().String(),
		Username:    username,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Password:    string(hashed),
		DisplayName: s.titling.String(strings.ToLower(display)),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return toProfile(u), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"exp":   time.Now().Add(s.jwtExpire).Unix(),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: signed}, nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return toProfile(u), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*ProfileResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.DisplayName != "" {
		u.DisplayName = s.titling.String(strings.ToLower(req.DisplayName))
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	if req.AvatarURI != "" {
		u.AvatarURI = req.AvatarURI
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return toProfile(u), nil
}

func (s *service) AwardBadge(ctx context.Context, userID, badgeCode string) error {
	return s.repo.AwardBadge(ctx, userID, badgeCode)
}

// SeedBadgeCatalog inserts the built-in badges. Runs at startup.
func (s *service) SeedBadgeCatalog(ctx context.Context) error {
	return s.repo.SeedBadges(ctx, []Badge{
		{
			ID:         uuid.New().String(),
			Code:       BadgeFirstPost,
			Label:      "First Memory",
			Variant:    "solid",
			Border:     "#2f2f2f",
			Background: "#f7e8ff",
			Color:      "#7232f2",
		},
		{
			ID:         uuid.New().String(),
			Code:       BadgeCrowdFavorite,
			Label:      "Crowd Favorite",
			Variant:    "outline",
			Border:     "#f2a232",
			Background: "#fff7e8",
			Color:      "#f2a232",
		},
	})
}

func toProfile(u *User) *ProfileResponse {
	badges := u.Badges
	if badges == nil {
		badges = []Badge{}
	}
	return &ProfileResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Bio:            u.Bio,
		AvatarURI:      u.AvatarURI,
		RelationshipID: u.RelationshipID,
		Badges:         badges,
		CreatedAt:      u.CreatedAt,
	}
}
