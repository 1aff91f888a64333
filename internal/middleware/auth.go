package middleware

import (
	"net/http"
	"partnerhub-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey = "user_id"
	claimsKey = "claims"
)

// AuthMiddleware requires a valid session token and stores the caller's user id.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, secret)
		if !ok {
			return
		}
		userID, ok := utils.ClaimUserID(claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid user ID in token"))
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func authenticate(c *gin.Context, secret string) (jwt.MapClaims, bool) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
		c.Abort()
		return nil, false
	}

	claims, err := utils.ValidateToken(secret, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid or expired token"))
		c.Abort()
		return nil, false
	}
	return claims, true
}

// CurrentUserID returns the id set by AuthMiddleware, or "" when unauthenticated.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// OptionalAuthMiddleware stores the caller's user id when a valid session token
// is present and lets the request through either way. Handlers decide how to
// answer anonymous callers.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, err := utils.ExtractToken(c); err == nil {
			if claims, err := utils.ValidateToken(secret, tokenString); err == nil {
				if userID, ok := utils.ClaimUserID(claims); ok {
					c.Set(userIDKey, userID)
					c.Set(claimsKey, claims)
				}
			}
		}
		c.Next()
	}
}
