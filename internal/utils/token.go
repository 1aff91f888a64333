package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// HandoffAudience marks partner handoff tokens. They share the signing secret
// with session tokens but are never accepted as one.
const HandoffAudience = "partner-handoff"

const sessionTTL = 72 * time.Hour

var ErrInvalidSession = errors.New("invalid token")

// GenerateToken issues a session token. Sessions are normally minted by the
// identity provider; this mirrors its format.
func GenerateToken(secret, userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies a session token signed with secret.
func ValidateToken(secret, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	aud, _ := claims.GetAudience()
	for _, a := range aud {
		if a == HandoffAudience {
			return nil, ErrInvalidSession
		}
	}
	return claims, nil
}

// ClaimUserID reads the user_id claim, which identity providers send either as
// a string or as a number.
func ClaimUserID(claims jwt.MapClaims) (string, bool) {
	switch v := claims["user_id"].(type) {
	case string:
		return v, v != ""
	case float64:
		return fmt.Sprintf("%.0f", v), true
	}
	return "", false
}

func ExtractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is required")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", fmt.Errorf("bearer token not found")
	}

	return strings.TrimPrefix(authHeader, bearerPrefix), nil
}
