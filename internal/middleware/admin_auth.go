package middleware

import (
	"net/http"
	"partnerhub-backend/internal/utils"
	"partnerhub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuthMiddleware validates that the user has admin privileges.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Invalid or expired token"))
			c.Abort()
			return
		}

		userID, _ := utils.ClaimUserID(claims)
		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			logger.Log.Warn("Unauthorized admin access attempt",
				zap.String("user_id", userID),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: Admins only"))
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}
