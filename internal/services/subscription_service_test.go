package services

import (
	"context"
	"partnerhub-backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionStatusDefaultsToFreemium(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db, nil, NewTransactionService(db, "secret"))

	status, err := svc.Status(context.Background(), "user-1", "notes")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusFreemium, status)
}

func TestSetStatusEmitsTransactionsAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mr, client := setupTestRedis(t)
	ledger := NewTransactionService(db, "secret")
	svc := NewSubscriptionService(db, client, ledger)

	status, err := svc.Status(ctx, "user-1", "notes")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusFreemium, status)
	assert.True(t, mr.Exists("subscription:user-1:notes"))

	sub, err := svc.SetStatus(ctx, "user-1", "notes", models.SubscriptionStatusActive, "billing")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.False(t, mr.Exists("subscription:user-1:notes"))

	status, err = svc.Status(ctx, "user-1", "notes")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, status)

	// Same status again is a no-op
	_, err = svc.SetStatus(ctx, "user-1", "notes", models.SubscriptionStatusActive, "billing")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, "user-1", "notes", models.SubscriptionStatusFreemium, "billing")
	require.NoError(t, err)

	var txs []models.Transaction
	require.NoError(t, db.Order("id asc").Find(&txs).Error)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TransactionTypeSubscriptionActivated, txs[0].Type)
	assert.Equal(t, models.TransactionTypeSubscriptionCancelled, txs[1].Type)
	assert.Equal(t, "billing", txs[0].Operator)
	for _, tx := range txs {
		assert.True(t, ledger.Verify(tx))
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db, nil, NewTransactionService(db, "secret"))

	_, err := svc.SetStatus(context.Background(), "user-1", "notes", models.SubscriptionStatus("trial"), "billing")
	assert.Error(t, err)
}
