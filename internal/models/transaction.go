package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

type TransactionType string

const (
	TransactionTypeSubscriptionActivated TransactionType = "subscription_activated"
	TransactionTypeSubscriptionCancelled TransactionType = "subscription_cancelled"
	TransactionTypeWorkflowPurchase      TransactionType = "workflow_purchase"
)

// Transaction is an append-only ledger entry emitted by the core for the billing side.
type Transaction struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time       `gorm:"precision:3" json:"created_at"` // Millisecond precision
	UserID      string          `gorm:"type:varchar(64);index;not null" json:"user_id"`
	PartnerID   string          `gorm:"type:varchar(64);index" json:"partner_id,omitempty"`
	WorkflowID  string          `gorm:"type:varchar(36);index" json:"workflow_id,omitempty"`
	Amount      int64           `gorm:"not null;default:0" json:"amount"`
	Reason      string          `gorm:"type:text" json:"reason"`
	Operator    string          `gorm:"type:varchar(100)" json:"operator"` // user id or 'system'
	Type        TransactionType `gorm:"type:varchar(50);index" json:"type"`
	Hash        string          `gorm:"type:varchar(64);default:''" json:"hash"` // HMAC SHA256
}

func (Transaction) TableName() string {
	return "transactions"
}

// GenerateHash generates a tamper-proof hash for the transaction
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%s|%d|%s|%s|%d|%s|%s|%s",
		t.UserID, t.CreatedAt.UnixNano(), t.PartnerID, t.WorkflowID, t.Amount,
		t.Reason, t.Operator, t.Type)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
