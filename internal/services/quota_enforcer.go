package services

import (
	"context"
	"fmt"
	"partnerhub-backend/internal/metrics"
	"partnerhub-backend/internal/models"
	"time"
)

// DefaultFreeDailyLimit is how many partner accesses a freemium user gets per UTC day.
const DefaultFreeDailyLimit = 1

// SubscriptionLookup resolves a user's plan for a partner.
type SubscriptionLookup interface {
	Status(ctx context.Context, userID, partnerID string) (models.SubscriptionStatus, error)
}

// QuotaGrant describes why an access was allowed.
type QuotaGrant struct {
	Subscribed bool
}

// QuotaEnforcer decides whether a user may take a partner access today.
type QuotaEnforcer struct {
	usage         UsageStore
	subscriptions SubscriptionLookup
	limit         int64
	now           func() time.Time
}

func NewQuotaEnforcer(usage UsageStore, subscriptions SubscriptionLookup, limit int) *QuotaEnforcer {
	if limit < 0 {
		limit = DefaultFreeDailyLimit
	}
	return &QuotaEnforcer{
		usage:         usage,
		subscriptions: subscriptions,
		limit:         int64(limit),
		now:           time.Now,
	}
}

// Authorize grants subscribed users unconditionally and otherwise consumes one free
// access for the current UTC day, failing with ErrQuotaExceeded once it is used up.
func (q *QuotaEnforcer) Authorize(ctx context.Context, userID, partnerID string) (QuotaGrant, error) {
	status, err := q.subscriptions.Status(ctx, userID, partnerID)
	if err != nil {
		return QuotaGrant{}, fmt.Errorf("resolve subscription: %w", err)
	}
	if status == models.SubscriptionStatusActive {
		metrics.QuotaDecisions.WithLabelValues("subscribed").Inc()
		return QuotaGrant{Subscribed: true}, nil
	}

	ok, err := q.usage.TryConsume(ctx, userID, models.UsageDay(q.now()), q.limit)
	if err != nil {
		return QuotaGrant{}, err
	}
	if !ok {
		metrics.QuotaDecisions.WithLabelValues("exceeded").Inc()
		return QuotaGrant{}, ErrQuotaExceeded
	}
	metrics.QuotaDecisions.WithLabelValues("free").Inc()
	return QuotaGrant{}, nil
}

// QuotaStatus is the free-tier view of today's usage.
type QuotaStatus struct {
	Day       string `json:"day"`
	Limit     int64  `json:"limit"`
	Used      int64  `json:"used"`
	Remaining int64  `json:"remaining"`
}

// Status reports today's free-tier usage for userID without consuming anything.
func (q *QuotaEnforcer) Status(ctx context.Context, userID string) (QuotaStatus, error) {
	day := models.UsageDay(q.now())
	used, err := q.usage.Count(ctx, userID, day)
	if err != nil {
		return QuotaStatus{}, err
	}
	remaining := q.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{Day: day, Limit: q.limit, Used: used, Remaining: remaining}, nil
}
