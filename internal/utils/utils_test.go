package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test_secret", "user-1", "admin")
	require.NoError(t, err)

	claims, err := ValidateToken("test_secret", token)
	require.NoError(t, err)
	userID, ok := ClaimUserID(claims)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "admin", claims["role"])

	_, err = ValidateToken("other_secret", token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsHandoffAndUnbounded(t *testing.T) {
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
		require.NoError(t, err)
		return s
	}

	_, err := ValidateToken("test_secret", sign(jwt.MapClaims{
		"user_id": "u", "aud": HandoffAudience, "exp": time.Now().Add(time.Minute).Unix(),
	}))
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = ValidateToken("test_secret", sign(jwt.MapClaims{"user_id": "u"}))
	assert.Error(t, err, "tokens without exp are rejected")
}

func TestClaimUserID(t *testing.T) {
	id, ok := ClaimUserID(jwt.MapClaims{"user_id": float64(42)})
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = ClaimUserID(jwt.MapClaims{"user_id": ""})
	assert.False(t, ok)
	_, ok = ClaimUserID(jwt.MapClaims{})
	assert.False(t, ok)
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"forwarded first value wins", "203.0.113.7, 10.0.0.1", "10.0.0.2:5555", "203.0.113.7"},
		{"socket address", "", "198.51.100.4:1234", "198.51.100.4"},
		{"blank forwarded", " ,10.0.0.1", "198.51.100.4:1234", "198.51.100.4"},
		{"unparseable remote", "", "pipe", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientID(req))
		})
	}
}
