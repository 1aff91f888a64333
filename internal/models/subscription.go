package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusFreemium SubscriptionStatus = "freemium"
)

// Valid reports whether s is one of the known statuses.
func (s SubscriptionStatus) Valid() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusFreemium
}

// Subscription mirrors the payment processor's view of a user's plan for one partner.
// Rows are written by reconciliation; the access core only reads them.
type Subscription struct {
	ID        uint               `gorm:"primarykey" json:"id"`
	UserID    string             `gorm:"type:varchar(64);not null;uniqueIndex:idx_subscription_user_partner" json:"user_id"`
	PartnerID string             `gorm:"type:varchar(64);not null;uniqueIndex:idx_subscription_user_partner" json:"partner_id"`
	Status    SubscriptionStatus `gorm:"type:varchar(20);not null;default:'freemium'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
