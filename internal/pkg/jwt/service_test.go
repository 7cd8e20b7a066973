package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
}

func TestIssueAndValidate(t *testing.T) {
	s := newTestService()
	id := uuid.New()

	pair, err := s.IssuePair(id, "a@example.com")
	require.NoError(t, err)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	c, err := s.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, c.UserID)
	assert.Equal(t, "a@example.com", c.Email)

	c, err = s.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, c.UserID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	s := newTestService()
	pair, err := s.IssuePair(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = s.ValidateAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = s.ValidateRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredToken(t *testing.T) {
	s := newTestService()
	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }
	pair, err := s.IssuePair(uuid.New(), "a@example.com")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRejectsGarbageAndOtherSecrets(t *testing.T) {
	s := newTestService()
	_, err := s.ValidateAccess("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewHMACService("other", "other-refresh", time.Minute, time.Hour)
	pair, err := other.IssuePair(uuid.New(), "")
	require.NoError(t, err)
	_, err = s.ValidateAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestMisconfiguredServiceFails(t *testing.T) {
	s := NewHMACService("", "", 0, 0)
	_, err := s.IssuePair(uuid.New(), "")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = newTestService().IssuePair(uuid.Nil, "")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
