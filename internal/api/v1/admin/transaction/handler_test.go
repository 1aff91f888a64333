package transaction_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"partnerhub-backend/internal/api/v1/admin/transaction"
	"partnerhub-backend/internal/database"
	"partnerhub-backend/internal/models"
	"partnerhub-backend/internal/services"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect database")
	require.NoError(t, database.Migrate(db), "failed to migrate database")
	return db
}

func seed(t *testing.T, db *gorm.DB) (*services.TransactionService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ledger := services.NewTransactionService(db, "test_secret")

	entries := []models.Transaction{
		{
			UserID:    "u-1",
			PartnerID: "design-studio",
			Type:      models.TransactionTypeSubscriptionActivated,
			Reason:    "subscription freemium -> active",
			Operator:  "admin:ops",
			CreatedAt: time.Now().Add(-2 * time.Hour),
		},
		{
			UserID:     "u-1",
			WorkflowID: "wf-1",
			Amount:     12,
			Type:       models.TransactionTypeWorkflowPurchase,
			Reason:     "run of workflow",
			CreatedAt:  time.Now().Add(-1 * time.Hour),
		},
		{
			UserID:    "u-2",
			PartnerID: "notes",
			Type:      models.TransactionTypeSubscriptionCancelled,
			Reason:    "subscription active -> freemium",
			CreatedAt: time.Now(),
		},
	}
	for i := range entries {
		require.NoError(t, ledger.Record(nil, &entries[i]))
	}

	h := transaction.NewHandler(ledger)
	r := gin.New()
	transaction.RegisterRoutes(r.Group("/admin"), h)
	return ledger, r
}

func TestListTransactions(t *testing.T) {
	db := setupTestDB(t)
	_, r := seed(t, db)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedTotal  int64
		check          func(t *testing.T, items []transaction.TransactionListItem)
	}{
		{
			name:           "List All",
			expectedStatus: http.StatusOK,
			expectedTotal:  3,
			check: func(t *testing.T, items []transaction.TransactionListItem) {
				assert.Equal(t, "u-2", items[0].UserID, "newest first")
				for _, item := range items {
					assert.True(t, item.Verified)
				}
			},
		},
		{
			name:           "Filter by UserID",
			query:          "?user_id=u-1",
			expectedStatus: http.StatusOK,
			expectedTotal:  2,
		},
		{
			name:           "Filter by PartnerID",
			query:          "?partner_id=notes",
			expectedStatus: http.StatusOK,
			expectedTotal:  1,
		},
		{
			name:           "Filter by Type",
			query:          "?type=" + string(models.TransactionTypeWorkflowPurchase),
			expectedStatus: http.StatusOK,
			expectedTotal:  1,
			check: func(t *testing.T, items []transaction.TransactionListItem) {
				assert.Equal(t, int64(12), items[0].Amount)
				assert.Equal(t, "wf-1", items[0].WorkflowID)
			},
		},
		{
			name:           "Pagination",
			query:          "?page=2&limit=2",
			expectedStatus: http.StatusOK,
			expectedTotal:  3,
			check: func(t *testing.T, items []transaction.TransactionListItem) {
				assert.Len(t, items, 1)
			},
		},
		{
			name:           "Invalid Page",
			query:          "?page=0",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Start Time",
			query:          "?start_time=yesterday",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/admin/transactions"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp struct {
				Code int                                 `json:"status"`
				Data transaction.TransactionListResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, 200, resp.Code)
			assert.Equal(t, tt.expectedTotal, resp.Data.Total)
			if tt.check != nil {
				tt.check(t, resp.Data.Transactions)
			}
		})
	}
}

func TestListTransactionsFlagsTampering(t *testing.T) {
	db := setupTestDB(t)
	_, r := seed(t, db)

	require.NoError(t, db.Model(&models.Transaction{}).
		Where("type = ?", models.TransactionTypeWorkflowPurchase).
		Update("amount", 1).Error)

	req, _ := http.NewRequest(http.MethodGet, "/admin/transactions?type=workflow_purchase", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data transaction.TransactionListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Transactions, 1)
	assert.False(t, resp.Data.Transactions[0].Verified)
}

func TestExportTransactions(t *testing.T) {
	db := setupTestDB(t)
	_, r := seed(t, db)

	req, _ := http.NewRequest(http.MethodGet, "/admin/transactions/export?user_id=u-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")

	csvContent := w.Body.String()
	assert.Contains(t, csvContent, "ID,Time,User ID,Partner ID,Workflow ID,Type")
	assert.Contains(t, csvContent, "workflow_purchase")
	assert.NotContains(t, csvContent, "u-2")
}
