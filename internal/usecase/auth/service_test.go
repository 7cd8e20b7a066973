package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"learnmap/internal/database/dbtest"
	"learnmap/internal/domain"
	"learnmap/internal/domain/user"
	"learnmap/internal/pkg/jwt"
	"learnmap/internal/repository"
)

func newService(t *testing.T) *Service {
	t.Helper()
	users := repository.NewUserRepository(dbtest.Open(t), time.Second)
	tokens := jwt.NewHMACService("a", "r", time.Minute, time.Hour)
	s := NewService(users, tokens)
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	sess, err := s.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "correct horse", DisplayName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.Empty(t, sess.User.PasswordHash)
	assert.NotEmpty(t, sess.Tokens.AccessToken)

	id, err := s.Authenticate(sess.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id)

	login, err := s.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)
}

func TestRegisterRejects(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Email: "nope", Password: "long enough"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Register(ctx, RegisterInput{Email: "a@b.co", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Register(ctx, RegisterInput{Email: "a@b.co", Password: "long enough"})
	require.NoError(t, err)
	_, err = s.Register(ctx, RegisterInput{Email: "A@B.co", Password: "long enough"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestLoginFailures(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterInput{Email: "a@b.co", Password: "long enough"})
	require.NoError(t, err)

	_, err = s.Login(ctx, LoginInput{Email: "a@b.co", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, LoginInput{Email: "who@b.co", Password: "long enough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, LoginInput{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	sess, err := s.Register(ctx, RegisterInput{Email: "a@b.co", Password: "long enough"})
	require.NoError(t, err)

	next, err := s.Refresh(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, next.User.ID)

	_, err = s.Refresh(ctx, sess.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
