package services

import (
	"context"
	"partnerhub-backend/internal/models"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTransactions(t *testing.T, ledger *TransactionService) {
	t.Helper()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.Transaction{
		{UserID: "u1", PartnerID: "notes", Type: models.TransactionTypeSubscriptionActivated, CreatedAt: base},
		{UserID: "u1", WorkflowID: "wf-1", Amount: 12, Type: models.TransactionTypeWorkflowPurchase, CreatedAt: base.Add(time.Hour)},
		{UserID: "u2", PartnerID: "notes", Type: models.TransactionTypeSubscriptionActivated, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range entries {
		require.NoError(t, ledger.Record(nil, &entries[i]))
	}
}

func TestFindTransactionsFilters(t *testing.T) {
	ctx := context.Background()
	ledger := NewTransactionService(setupTestDB(t), "secret")
	seedTransactions(t, ledger)

	all, total, err := ledger.FindTransactions(ctx, TransactionFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "u2", all[0].UserID, "newest first")

	user := "u1"
	byUser, total, err := ledger.FindTransactions(ctx, TransactionFilter{UserID: &user, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byUser, 2)

	txType := models.TransactionTypeWorkflowPurchase
	purchases, _, err := ledger.FindTransactions(ctx, TransactionFilter{Type: &txType})
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, int64(12), purchases[0].Amount)
	assert.Equal(t, "system", purchases[0].Operator)

	page2, _, err := ledger.FindTransactions(ctx, TransactionFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestGenerateTransactionCSV(t *testing.T) {
	ledger := NewTransactionService(setupTestDB(t), "secret")
	seedTransactions(t, ledger)

	txs, _, err := ledger.FindTransactions(context.Background(), TransactionFilter{Page: 1, Limit: 10})
	require.NoError(t, err)

	out, err := GenerateTransactionCSV(txs)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Time,User ID"))
	assert.Contains(t, string(out), "workflow_purchase")
}

func TestTransactionVerifyDetectsEdits(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewTransactionService(db, "secret")
	tx := models.Transaction{UserID: "u1", Amount: 5, Type: models.TransactionTypeWorkflowPurchase}
	require.NoError(t, ledger.Record(nil, &tx))

	var stored models.Transaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	assert.True(t, ledger.Verify(stored))

	stored.Amount = 500
	assert.False(t, ledger.Verify(stored))
}
