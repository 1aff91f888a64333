package upload

import (
	"net/http"
	"partnerhub-backend/internal/services"
	"partnerhub-backend/internal/utils"
	"partnerhub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CredentialIssuer hands out temporary object storage credentials.
type CredentialIssuer interface {
	Credentials() (*services.STSCredentials, error)
}

type Handler struct {
	issuer CredentialIssuer
}

// NewHandler builds the handler. A nil issuer means object storage is off.
func NewHandler(issuer CredentialIssuer) *Handler {
	return &Handler{issuer: issuer}
}

// GetOSSToken godoc
// @Summary Get OSS STS Token
// @Description Get temporary credentials for uploading workflow media to object storage
// @Tags common
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=services.STSCredentials}
// @Failure 503 {object} utils.Response
// @Router /common/upload/token [get]
func (h *Handler) GetOSSToken(c *gin.Context) {
	if h.issuer == nil {
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, "Object storage is not configured"))
		return
	}

	token, err := h.issuer.Credentials()
	if err != nil {
		logger.Log.Error("failed to issue OSS token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to get OSS token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("OSS token retrieved successfully", token))
}
