package subscription

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/subscriptions", h.GetStatus)
	router.PUT("/subscriptions", h.SetStatus)
}
