package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test_secret")
	require.NoError(t, err)
	if clock != nil {
		svc.now = clock.Now
	}
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("  ")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, nil)

	pairs := [][2]string{
		{"user-1", "notes"},
		{"b4f7c1de-0000-4a4a-9c9c-1234567890ab", "design-studio"},
		{"ユーザー", "partner with spaces"},
	}
	for _, p := range pairs {
		token, err := svc.Issue(p[0], p[1])
		require.NoError(t, err)

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, p[0], claims.UserID)
		assert.Equal(t, p[1], claims.PartnerID)
	}
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("user-1", "notes")
	require.NoError(t, err)

	clock.Advance(HandoffTokenTTL - time.Second)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	clock.Advance(time.Second)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	clock.Advance(time.Hour)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	svc := newTestTokenService(t, nil)
	token, err := svc.Issue("user-1", "notes")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload := []byte(parts[1])
	for i := range payload {
		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		forged := parts[0] + "." + string(tampered) + "." + parts[2]
		_, err := svc.Verify(forged)
		assert.ErrorIs(t, err, ErrInvalidToken, "flipping byte %d must invalidate the token", i)
	}
}

func TestTokenSignedWithOtherSecretIsInvalid(t *testing.T) {
	other, err := NewTokenService("another_secret")
	require.NoError(t, err)
	token, err := other.Issue("user-1", "notes")
	require.NoError(t, err)

	_, err = newTestTokenService(t, nil).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMissingFieldsIsInvalid(t *testing.T) {
	svc := newTestTokenService(t, nil)
	token, err := svc.Issue("", "notes")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenIsNotAHandoffToken(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id":    "user-1",
		"partner_id": "notes",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
	require.NoError(t, err)

	_, err = newTestTokenService(t, nil).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenIsInvalid(t *testing.T) {
	svc := newTestTokenService(t, nil)
	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
