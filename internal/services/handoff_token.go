package services

import (
	"fmt"
	"partnerhub-backend/internal/utils"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// HandoffTokenTTL is fixed. Tokens cannot be revoked, so their lifetime stays short.
	HandoffTokenTTL = 15 * time.Minute

	handoffAudience = utils.HandoffAudience
	handoffIssuer   = "partnerhub"
)

// HandoffClaims binds a user to a partner until the token expires.
type HandoffClaims struct {
	UserID    string `json:"user_id"`
	PartnerID string `json:"partner_id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies stateless handoff tokens with one shared HMAC secret.
// Verification never touches storage so partners can check a token without a round trip.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue returns a token for (userID, partnerID) that expires HandoffTokenTTL from now.
func (s *TokenService) Issue(userID, partnerID string) (string, error) {
	now := s.now()
	claims := HandoffClaims{
		UserID:    userID,
		PartnerID: partnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    handoffIssuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{handoffAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(HandoffTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign handoff token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. Any failure, whether a bad signature,
// expiry or a missing field, is reported as ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*HandoffClaims, error) {
	claims := &HandoffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(handoffAudience),
		jwt.WithIssuer(handoffIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.PartnerID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
