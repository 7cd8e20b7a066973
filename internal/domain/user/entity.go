package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnmap/internal/domain"
)

const MinPasswordLength = 8

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return domain.NewValidationError("email", "must be a valid address")
	}
	if len(password) < MinPasswordLength {
		return domain.NewValidationError("password", "must be at least 8 characters")
	}
	return nil
}
