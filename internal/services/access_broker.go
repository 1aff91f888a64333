package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"partnerhub-backend/internal/metrics"
	"partnerhub-backend/internal/models"
	"partnerhub-backend/pkg/logger"

	"go.uber.org/zap"
)

// AccessGrant is the outcome of a successful access request.
type AccessGrant struct {
	PartnerID  string
	URL        string
	Subscribed bool
	Bridged    bool
}

// VerifiedAccess is what a partner learns when it verifies a handoff token.
type VerifiedAccess struct {
	UserID             string                    `json:"user_id"`
	PartnerID          string                    `json:"partner_id"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscription_status"`
}

// AccessBroker hands users off to partners and answers partner verification calls.
type AccessBroker struct {
	catalog       PartnerCatalog
	quota         *QuotaEnforcer
	tokens        *TokenService
	limiter       *RateLimiter
	subscriptions SubscriptionLookup
}

func NewAccessBroker(catalog PartnerCatalog, quota *QuotaEnforcer, tokens *TokenService, limiter *RateLimiter, subscriptions SubscriptionLookup) *AccessBroker {
	return &AccessBroker{
		catalog:       catalog,
		quota:         quota,
		tokens:        tokens,
		limiter:       limiter,
		subscriptions: subscriptions,
	}
}

// RequestAccess resolves serviceID, enforces the quota and returns where to send the user.
// Bridged partners get a handoff token and the embed flag in the query string.
func (b *AccessBroker) RequestAccess(ctx context.Context, userID, serviceID string) (*AccessGrant, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	partner, err := b.catalog.Lookup(ctx, serviceID)
	if err != nil {
		metrics.AccessRequests.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	grant, err := b.quota.Authorize(ctx, userID, partner.ID)
	if err != nil {
		metrics.AccessRequests.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	result := &AccessGrant{
		PartnerID:  partner.ID,
		URL:        partner.URL,
		Subscribed: grant.Subscribed,
		Bridged:    partner.Bridged,
	}

	if partner.Bridged {
		token, err := b.tokens.Issue(userID, partner.ID)
		if err != nil {
			metrics.AccessRequests.WithLabelValues("error").Inc()
			return nil, err
		}
		result.URL, err = handoffURL(partner.URL, token)
		if err != nil {
			metrics.AccessRequests.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	metrics.AccessRequests.WithLabelValues("granted").Inc()
	logger.Log.Info("partner access granted",
		zap.String("user_id", userID),
		zap.String("partner_id", partner.ID),
		zap.Bool("subscribed", grant.Subscribed),
		zap.Bool("bridged", partner.Bridged))

	return result, nil
}

// VerifyAccess checks a handoff token on behalf of a partner. Apart from rate-limit
// bookkeeping for clientID it has no side effects.
func (b *AccessBroker) VerifyAccess(ctx context.Context, clientID, token string) (*VerifiedAccess, error) {
	if !b.limiter.Admit(clientID) {
		metrics.AccessVerifications.WithLabelValues("rate_limited").Inc()
		return nil, ErrRateLimited
	}
	if token == "" {
		metrics.AccessVerifications.WithLabelValues("missing_token").Inc()
		return nil, ErrMissingToken
	}

	claims, err := b.tokens.Verify(token)
	if err != nil {
		metrics.AccessVerifications.WithLabelValues("invalid_token").Inc()
		return nil, err
	}

	status, err := b.subscriptions.Status(ctx, claims.UserID, claims.PartnerID)
	if err != nil {
		metrics.AccessVerifications.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve subscription: %w", err)
	}

	metrics.AccessVerifications.WithLabelValues("verified").Inc()
	return &VerifiedAccess{
		UserID:             claims.UserID,
		PartnerID:          claims.PartnerID,
		SubscriptionStatus: status,
	}, nil
}

func handoffURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid partner url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("embed", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnknownService):
		return "unknown_service"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	default:
		return "error"
	}
}
