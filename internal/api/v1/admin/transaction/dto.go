package transaction

import (
	"partnerhub-backend/internal/models"
	"time"
)

type TransactionListItem struct {
	ID         uint                   `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	UserID     string                 `json:"user_id"`
	PartnerID  string                 `json:"partner_id,omitempty"`
	WorkflowID string                 `json:"workflow_id,omitempty"`
	Amount     int64                  `json:"amount"`
	Reason     string                 `json:"reason"`
	Operator   string                 `json:"operator"`
	Type       models.TransactionType `json:"type"`
	Hash       string                 `json:"hash"`
	Verified   bool                   `json:"verified"`
}

type TransactionListResponse struct {
	Transactions []TransactionListItem `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}
