package services

import (
	"context"
	"net/url"
	"partnerhub-backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = mapCatalog{
	"notes":         {ID: "notes", Name: "Notes", URL: "/apps/notes", Bridged: false, Active: true},
	"design-studio": {ID: "design-studio", Name: "Design Studio", URL: "https://design.partner.example/handoff?lang=en", Bridged: true, Active: true},
	"retired":       {ID: "retired", Name: "Retired", URL: "https://old.example", Bridged: true, Active: false},
}

type brokerFixture struct {
	broker  *AccessBroker
	subs    *staticSubscriptions
	tokens  *TokenService
	limiter *RateLimiter
	clock   *fakeClock
}

func newBrokerFixture(t *testing.T) *brokerFixture {
	t.Helper()
	clock := newFakeClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	subs := newStaticSubscriptions()
	tokens := newTestTokenService(t, clock)
	limiter := NewRateLimiter(30, time.Minute)
	limiter.now = clock.Now
	quota := NewQuotaEnforcer(NewGormUsageStore(setupTestDB(t)), subs, 1)
	quota.now = clock.Now

	return &brokerFixture{
		broker:  NewAccessBroker(testCatalog, quota, tokens, limiter, subs),
		subs:    subs,
		tokens:  tokens,
		limiter: limiter,
		clock:   clock,
	}
}

func TestRequestAccessBridgedPartner(t *testing.T) {
	f := newBrokerFixture(t)

	grant, err := f.broker.RequestAccess(context.Background(), "user-1", "design-studio")
	require.NoError(t, err)
	assert.True(t, grant.Bridged)

	u, err := url.Parse(grant.URL)
	require.NoError(t, err)
	assert.Equal(t, "design.partner.example", u.Host)
	assert.Equal(t, "/handoff", u.Path)
	assert.Equal(t, "en", u.Query().Get("lang"))
	assert.Equal(t, "1", u.Query().Get("embed"))

	claims, err := f.tokens.Verify(u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "design-studio", claims.PartnerID)
}

func TestRequestAccessSameOriginPartner(t *testing.T) {
	f := newBrokerFixture(t)

	grant, err := f.broker.RequestAccess(context.Background(), "user-1", "notes")
	require.NoError(t, err)
	assert.False(t, grant.Bridged)
	assert.Equal(t, "/apps/notes", grant.URL)
}

func TestRequestAccessErrors(t *testing.T) {
	f := newBrokerFixture(t)
	ctx := context.Background()

	_, err := f.broker.RequestAccess(ctx, "user-1", "does-not-exist")
	assert.ErrorIs(t, err, ErrUnknownService)

	_, err = f.broker.RequestAccess(ctx, "user-1", "retired")
	assert.ErrorIs(t, err, ErrUnknownService)

	_, err = f.broker.RequestAccess(ctx, "", "notes")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Unknown services do not burn the free access
	_, err = f.broker.RequestAccess(ctx, "user-1", "notes")
	require.NoError(t, err)

	_, err = f.broker.RequestAccess(ctx, "user-1", "design-studio")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestRequestAccessSubscribedUser(t *testing.T) {
	f := newBrokerFixture(t)
	f.subs.activate("pro", "design-studio")

	for i := 0; i < 3; i++ {
		grant, err := f.broker.RequestAccess(context.Background(), "pro", "design-studio")
		require.NoError(t, err)
		assert.True(t, grant.Subscribed)
	}
}

func TestVerifyAccess(t *testing.T) {
	f := newBrokerFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue("user-1", "design-studio")
	require.NoError(t, err)

	verified, err := f.broker.VerifyAccess(ctx, "203.0.113.7", token)
	require.NoError(t, err)
	assert.Equal(t, &VerifiedAccess{
		UserID:             "user-1",
		PartnerID:          "design-studio",
		SubscriptionStatus: models.SubscriptionStatusFreemium,
	}, verified)

	// Status is resolved at verification time, not at issuance
	f.subs.activate("user-1", "design-studio")
	verified, err = f.broker.VerifyAccess(ctx, "203.0.113.7", token)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, verified.SubscriptionStatus)
}

func TestVerifyAccessFailures(t *testing.T) {
	f := newBrokerFixture(t)
	ctx := context.Background()

	_, err := f.broker.VerifyAccess(ctx, "c1", "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = f.broker.VerifyAccess(ctx, "c1", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := f.tokens.Issue("user-1", "design-studio")
	require.NoError(t, err)
	f.clock.Advance(HandoffTokenTTL)
	_, err = f.broker.VerifyAccess(ctx, "c2", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessRateLimited(t *testing.T) {
	f := newBrokerFixture(t)
	ctx := context.Background()
	token, err := f.tokens.Issue("user-1", "design-studio")
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		_, err := f.broker.VerifyAccess(ctx, "partner-host", token)
		require.NoError(t, err)
	}
	_, err = f.broker.VerifyAccess(ctx, "partner-host", token)
	assert.ErrorIs(t, err, ErrRateLimited)

	// Rejected before the token is even looked at
	_, err = f.broker.VerifyAccess(ctx, "partner-host", "")
	assert.ErrorIs(t, err, ErrRateLimited)

	f.clock.Advance(61 * time.Second)
	_, err = f.broker.VerifyAccess(ctx, "partner-host", token)
	assert.NoError(t, err)
}
