package access

import (
	"partnerhub-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, h *Handler, secret string) {
	group := router.Group("/access")
	{
		group.POST("", middleware.OptionalAuthMiddleware(secret), h.RequestAccess)
		group.GET("/verify", h.VerifyAccess)
		group.GET("/quota", middleware.AuthMiddleware(secret), h.GetQuota)
	}
}
