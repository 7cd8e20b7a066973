package user

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"learnmap/internal/domain"
	"learnmap/internal/domain/user"
)

const maxDisplayNameLength = 100

type UpdateMeInput struct {
	DisplayName *string
}

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	return sanitizeUser(u), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	if in.DisplayName == nil {
		return s.GetMe(ctx, userID)
	}
	name := strings.TrimSpace(*in.DisplayName)
	if utf8.RuneCountInString(name) > maxDisplayNameLength {
		return user.User{}, domain.NewValidationError("display_name", "must be at most 100 characters")
	}
	u, err := s.users.UpdateDisplayName(ctx, userID, name)
	if err != nil {
		return user.User{}, err
	}
	return sanitizeUser(u), nil
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
