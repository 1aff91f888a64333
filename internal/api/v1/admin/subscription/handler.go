package subscription

import (
	"net/http"
	"partnerhub-backend/internal/middleware"
	"partnerhub-backend/internal/services"
	"partnerhub-backend/internal/utils"
	"partnerhub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	subscriptions *services.SubscriptionService
}

func NewHandler(subscriptions *services.SubscriptionService) *Handler {
	return &Handler{subscriptions: subscriptions}
}

// SetStatus godoc
// @Summary Set a subscription status
// @Description Applies the outcome of payment reconciliation for one user and partner. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SetStatusRequest true "Subscription status"
// @Success 200 {object} utils.Response{data=StatusResponse}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /admin/subscriptions [put]
func (h *Handler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	operator := "admin:" + middleware.CurrentUserID(c)
	sub, err := h.subscriptions.SetStatus(c.Request.Context(), req.UserID, req.PartnerID, req.Status, operator)
	if err != nil {
		logger.Log.Error("failed to set subscription status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update subscription"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Subscription updated successfully", StatusResponse{
		UserID:    sub.UserID,
		PartnerID: sub.PartnerID,
		Status:    sub.Status,
	}))
}

// GetStatus godoc
// @Summary Get a subscription status
// @Tags admin
// @Produce json
// @Security Bearer
// @Param user_id query string true "User ID"
// @Param partner_id query string true "Partner ID"
// @Success 200 {object} utils.Response{data=StatusResponse}
// @Failure 400 {object} utils.Response
// @Router /admin/subscriptions [get]
func (h *Handler) GetStatus(c *gin.Context) {
	userID, partnerID := c.Query("user_id"), c.Query("partner_id")
	if userID == "" || partnerID == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "user_id and partner_id are required"))
		return
	}

	status, err := h.subscriptions.Status(c.Request.Context(), userID, partnerID)
	if err != nil {
		logger.Log.Error("failed to read subscription status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to read subscription"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Subscription retrieved successfully", StatusResponse{
		UserID:    userID,
		PartnerID: partnerID,
		Status:    status,
	}))
}
