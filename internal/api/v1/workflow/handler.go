package workflow

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
	workflows *services.WorkflowService
}

func NewHandler(workflows *services.WorkflowService) *Handler {
	return &Handler{workflows: workflows}
}

// CreateWorkflow godoc
// @Summary Create a workflow
// @Description Stores a chain of AI steps. The price is raised to the minimum cost of the steps when lower.
// @Tags workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateWorkflowRequest true "Workflow"
// @Success 201 {object} utils.Response{data=models.Workflow}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /workflows [post]
func (h *Handler) CreateWorkflow(c *gin.Context) {
	var req CreateWorkflowRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	wf, err := h.workflows.Create(c.Request.Context(), middleware.CurrentUserID(c), services.CreateWorkflowInput{
		Name:        req.Name,
		Description: req.Description,
		Monetized:   req.Monetized,
		Price:       req.Price,
		Steps:       toModelSteps(req.Steps),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.NewResponse(http.StatusCreated, "Workflow created successfully", wf))
}

// GetWorkflow godoc
// @Summary Get a workflow
// @Tags workflows
// @Produce json
// @Security Bearer
// @Param id path string true "Workflow ID"
// @Success 200 {object} utils.Response{data=models.Workflow}
// @Failure 404 {object} utils.Response
// @Router /workflows/{id} [get]
func (h *Handler) GetWorkflow(c *gin.Context) {
	wf, err := h.workflows.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Workflow retrieved successfully", wf))
}

// ReplaceSteps godoc
// @Summary Replace workflow steps
// @Description Creator only. The price is re-clamped to the new minimum cost.
// @Tags workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workflow ID"
// @Param request body ReplaceStepsRequest true "Steps"
// @Success 200 {object} utils.Response{data=models.Workflow}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /workflows/{id}/steps [put]
func (h *Handler) ReplaceSteps(c *gin.Context) {
	var req ReplaceStepsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	wf, err := h.workflows.ReplaceSteps(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), toModelSteps(req.Steps))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Workflow steps updated successfully", wf))
}

// UpdatePrice godoc
// @Summary Update workflow price
// @Description Creator only. A price below the minimum cost is stored as the minimum cost.
// @Tags workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workflow ID"
// @Param request body UpdatePriceRequest true "Price"
// @Success 200 {object} utils.Response{data=models.Workflow}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /workflows/{id}/price [patch]
func (h *Handler) UpdatePrice(c *gin.Context) {
	var req UpdatePriceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	wf, err := h.workflows.UpdatePrice(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), *req.Price, req.Monetized)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Workflow price updated successfully", wf))
}

// RunWorkflow godoc
// @Summary Run a stored workflow
// @Description Steps whose model cannot be reached produce simulated outputs; the run itself does not fail.
// @Tags workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workflow ID"
// @Param request body RunRequest true "Initial input"
// @Success 200 {object} utils.Response{data=services.RunResult}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /workflows/{id}/run [post]
func (h *Handler) RunWorkflow(c *gin.Context) {
	var req RunRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.workflows.RunWorkflow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Workflow run completed", result))
}

// RunAdhoc godoc
// @Summary Run steps without storing a workflow
// @Tags workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body AdhocRunRequest true "Steps and initial input"
// @Success 200 {object} utils.Response{data=services.RunResult}
// @Failure 400 {object} utils.Response
// @Router /workflows/run [post]
func (h *Handler) RunAdhoc(c *gin.Context) {
	var req AdhocRunRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.workflows.RunAdhoc(c.Request.Context(), middleware.CurrentUserID(c), toModelSteps(req.Steps), req.Input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Workflow run completed", result))
}

// Estimate godoc
// @Summary Minimum cost of a step list
// @Tags workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body EstimateRequest true "Steps"
// @Success 200 {object} utils.Response{data=EstimateResponse}
// @Failure 400 {object} utils.Response
// @Router /workflows/estimate [post]
func (h *Handler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	cost, err := h.workflows.Estimate(toModelSteps(req.Steps))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Estimate calculated", EstimateResponse{MinimumCost: cost}))
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	switch {
	case errors.Is(err, services.ErrMalformedSteps):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, "Only the creator can modify this workflow"
	case errors.Is(err, services.ErrWorkflowNotFound):
		status, message = http.StatusNotFound, "Workflow not found"
	default:
		logger.Log.Error("workflow request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, utils.NewErrorResponse(status, message))
}
