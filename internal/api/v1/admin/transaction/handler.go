package transaction

import (
	"errors"
	"fmt"
	"net/http"
	"partnerhub-backend/internal/models"
	"partnerhub-backend/internal/services"
	"partnerhub-backend/internal/utils"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const exportLimit = 10000

type Handler struct {
	ledger *services.TransactionService
}

func NewHandler(ledger *services.TransactionService) *Handler {
	return &Handler{ledger: ledger}
}

// ListTransactions godoc
// @Summary List transactions
// @Description Get a paginated list of ledger entries with filtering. Each entry reports whether its hash still verifies. Admin only.
// @Tags admin
// @Produce json
// @Security Bearer
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param user_id query string false "Filter by user ID"
// @Param partner_id query string false "Filter by partner ID"
// @Param type query string false "Filter by transaction type"
// @Param start_time query string false "Filter by start time (RFC3339)"
// @Param end_time query string false "Filter by end time (RFC3339)"
// @Success 200 {object} utils.Response{data=TransactionListResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	filter.Page = page
	filter.Limit = limit

	transactions, total, err := h.ledger.FindTransactions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	items := make([]TransactionListItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, TransactionListItem{
			ID:         t.ID,
			CreatedAt:  t.CreatedAt,
			UserID:     t.UserID,
			PartnerID:  t.PartnerID,
			WorkflowID: t.WorkflowID,
			Amount:     t.Amount,
			Reason:     t.Reason,
			Operator:   t.Operator,
			Type:       t.Type,
			Hash:       t.Hash,
			Verified:   h.ledger.Verify(t),
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Transactions retrieved successfully", TransactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}))
}

// ExportTransactions godoc
// @Summary Export transactions
// @Description Export matching ledger entries to CSV. Admin only.
// @Tags admin
// @Produce text/csv
// @Security Bearer
// @Param user_id query string false "Filter by user ID"
// @Param partner_id query string false "Filter by partner ID"
// @Param type query string false "Filter by transaction type"
// @Param start_time query string false "Filter by start time (RFC3339)"
// @Param end_time query string false "Filter by end time (RFC3339)"
// @Success 200 {string} string "CSV content"
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/transactions/export [get]
func (h *Handler) ExportTransactions(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	filter.Page = 1
	filter.Limit = exportLimit

	transactions, _, err := h.ledger.FindTransactions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	csvContent, err := services.GenerateTransactionCSV(transactions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate CSV"))
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", csvContent)
}

func parseFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if userID, exists := c.GetQuery("user_id"); exists && userID != "" {
		filter.UserID = &userID
	}
	if partnerID, exists := c.GetQuery("partner_id"); exists && partnerID != "" {
		filter.PartnerID = &partnerID
	}
	if typeStr, exists := c.GetQuery("type"); exists && typeStr != "" {
		t := models.TransactionType(typeStr)
		filter.Type = &t
	}
	if startTimeStr, exists := c.GetQuery("start_time"); exists {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			return filter, errors.New("Invalid start_time format")
		}
		filter.StartTime = &startTime
	}
	if endTimeStr, exists := c.GetQuery("end_time"); exists {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			return filter, errors.New("Invalid end_time format")
		}
		filter.EndTime = &endTime
	}
	return filter, nil
}
