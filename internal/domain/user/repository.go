package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"learnmap/internal/domain"
)

var (
	ErrNotFound   = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrEmailTaken = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) (User, error)
}
