package access

import (
	"errors"
	"net/http"
	"partnerhub-backend/internal/middleware"
	"partnerhub-backend/internal/services"
	"partnerhub-backend/internal/utils"
	"partnerhub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	broker *services.AccessBroker
	quota  *services.QuotaEnforcer
}

func NewHandler(broker *services.AccessBroker, quota *services.QuotaEnforcer) *Handler {
	return &Handler{broker: broker, quota: quota}
}

// RequestAccess godoc
// @Summary Request partner access
// @Description Checks the daily quota and returns the URL to open the partner with. Token-bridged partners get a short-lived handoff token in the URL.
// @Tags access
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body AccessRequest true "Partner service id"
// @Success 200 {object} AccessResponse
// @Failure 400 {object} utils.ErrorBody "unknown_service"
// @Failure 401 {object} utils.ErrorBody "unauthenticated"
// @Failure 402 {object} utils.ErrorBody "quota_exceeded"
// @Router /access [post]
func (h *Handler) RequestAccess(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, utils.ErrorBody{Error: services.ErrUnauthenticated.Error()})
		return
	}

	var req AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorBody{Error: "invalid_request"})
		return
	}

	grant, err := h.broker.RequestAccess(c.Request.Context(), userID, req.ServiceID)
	if err != nil {
		status, code := accessErrorStatus(err)
		c.JSON(status, utils.ErrorBody{Error: code})
		return
	}

	c.JSON(http.StatusOK, AccessResponse{URL: grant.URL})
}

// VerifyAccess godoc
// @Summary Verify a handoff token
// @Description Called by partners from their own origin. Reports who the token belongs to and their current subscription status.
// @Tags access
// @Produce json
// @Param token query string true "Handoff token"
// @Success 200 {object} services.VerifiedAccess
// @Failure 400 {object} utils.ErrorBody "missing_token"
// @Failure 401 {object} utils.ErrorBody "invalid_token"
// @Failure 429 {object} utils.ErrorBody "rate_limited"
// @Router /access/verify [get]
func (h *Handler) VerifyAccess(c *gin.Context) {
	verified, err := h.broker.VerifyAccess(c.Request.Context(), utils.ClientID(c.Request), c.Query("token"))
	if err != nil {
		status, code := accessErrorStatus(err)
		c.JSON(status, utils.ErrorBody{Error: code})
		return
	}

	c.JSON(http.StatusOK, verified)
}

// GetQuota godoc
// @Summary Free accesses left today
// @Tags access
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=services.QuotaStatus}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /access/quota [get]
func (h *Handler) GetQuota(c *gin.Context) {
	status, err := h.quota.Status(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		logger.Log.Error("failed to read quota status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to read quota"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Quota retrieved successfully", status))
}

func accessErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnknownService):
		return http.StatusBadRequest, services.ErrUnknownService.Error()
	case errors.Is(err, services.ErrMissingToken):
		return http.StatusBadRequest, services.ErrMissingToken.Error()
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, services.ErrInvalidToken.Error()
	case errors.Is(err, services.ErrQuotaExceeded):
		return http.StatusPaymentRequired, services.ErrQuotaExceeded.Error()
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, services.ErrRateLimited.Error()
	}
	logger.Log.Error("access request failed", zap.Error(err))
	return http.StatusInternalServerError, "internal_error"
}
