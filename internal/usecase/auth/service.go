package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"learnmap/internal/domain/user"
	"learnmap/internal/pkg/jwt"
	"learnmap/internal/pkg/logger"
)

var (
	ErrEmailAlreadyRegistered = user.ErrEmailTaken
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid or expired token")
)

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

type Session struct {
	User   user.User `json:"user"`
	Tokens jwt.Pair  `json:"tokens"`
}

type Service struct {
	users  user.Repository
	tokens jwt.Service
	cost   int
}

func NewService(users user.Repository, tokens jwt.Service) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := user.NormalizeEmail(in.Email)
	if err := user.ValidateCredentials(email, in.Password); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, err
	}

	u, err := s.users.Create(ctx, user.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: string(hash),
	})
	if err != nil {
		return Session{}, err
	}
	logger.Component(ctx, "auth").WithField("user_id", u.ID).Info("user registered")
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := user.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

// Refresh trades a refresh token for a new pair. The user must still exist.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tokens.ValidateRefresh(strings.TrimSpace(refreshToken))
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, err
	}
	return s.session(u)
}

// Authenticate resolves an access token to its user id.
func (s *Service) Authenticate(accessToken string) (uuid.UUID, error) {
	claims, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *Service) session(u user.User) (Session, error) {
	pair, err := s.tokens.IssuePair(u.ID, u.Email)
	if err != nil {
		return Session{}, err
	}
	u.PasswordHash = ""
	return Session{User: u, Tokens: pair}, nil
}
