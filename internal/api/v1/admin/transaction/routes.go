package transaction

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/transactions", h.ListTransactions)
	router.GET("/transactions/export", h.ExportTransactions)
}
