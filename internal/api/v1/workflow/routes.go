package workflow

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	group := router.Group("/workflows")
	{
		group.POST("", h.CreateWorkflow)
		group.POST("/run", h.RunAdhoc)
		group.POST("/estimate", h.Estimate)
		group.GET("/:id", h.GetWorkflow)
		group.PUT("/:id/steps", h.ReplaceSteps)
		group.PATCH("/:id/price", h.UpdatePrice)
		group.POST("/:id/run", h.RunWorkflow)
	}
}
