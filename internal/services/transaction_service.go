package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"partnerhub-backend/internal/models"
	"time"

	"gorm.io/gorm"
)

// TransactionFilter defines criteria for filtering transactions
type TransactionFilter struct {
	UserID    *string
	PartnerID *string
	Type      *models.TransactionType
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// TransactionService appends hashed ledger entries and queries them.
type TransactionService struct {
	db     *gorm.DB
	secret string
	now    func() time.Time
}

func NewTransactionService(db *gorm.DB, secret string) *TransactionService {
	return &TransactionService{db: db, secret: secret, now: time.Now}
}

// Record stamps and hashes t, then inserts it using tx (or the service's own handle when tx is nil).
func (s *TransactionService) Record(tx *gorm.DB, t *models.Transaction) error {
	if tx == nil {
		tx = s.db
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	// The column keeps milliseconds; hash what will be read back.
	t.CreatedAt = t.CreatedAt.Truncate(time.Millisecond)
	if t.Operator == "" {
		t.Operator = "system"
	}
	t.Hash = t.GenerateHash(s.secret)
	return tx.Create(t).Error
}

// Verify reports whether t's stored hash still matches its contents.
func (s *TransactionService) Verify(t models.Transaction) bool {
	return t.Hash == t.GenerateHash(s.secret)
}

// FindTransactions retrieves a paginated list of transactions with filtering
func (s *TransactionService) FindTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Transaction{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// GenerateTransactionCSV generates a CSV file content for transactions
func GenerateTransactionCSV(transactions []models.Transaction) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{
		"ID", "Time", "User ID", "Partner ID", "Workflow ID", "Type",
		"Amount", "Reason", "Operator", "Hash",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range transactions {
		record := []string{
			fmt.Sprintf("%d", t.ID),
			t.CreatedAt.Format(time.RFC3339Nano),
			t.UserID,
			t.PartnerID,
			t.WorkflowID,
			string(t.Type),
			fmt.Sprintf("%d", t.Amount),
			t.Reason,
			t.Operator,
			t.Hash,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
