package services

import (
	"context"
	"errors"
	"fmt"
	"partnerhub-backend/internal/database"
	"partnerhub-backend/internal/models"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database so tests do not share rows.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect database")
	require.NoError(t, database.Migrate(db), "failed to migrate database")
	return db
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// staticSubscriptions is an in-memory SubscriptionLookup keyed by "user|partner".
type staticSubscriptions struct {
	mu     sync.Mutex
	active map[string]bool
	err    error
}

func newStaticSubscriptions() *staticSubscriptions {
	return &staticSubscriptions{active: make(map[string]bool)}
}

func (s *staticSubscriptions) activate(userID, partnerID string) {
	s.mu.Lock()
	s.active[userID+"|"+partnerID] = true
	s.mu.Unlock()
}

func (s *staticSubscriptions) Status(_ context.Context, userID, partnerID string) (models.SubscriptionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.active[userID+"|"+partnerID] {
		return models.SubscriptionStatusActive, nil
	}
	return models.SubscriptionStatusFreemium, nil
}

// mapCatalog is an in-memory PartnerCatalog.
type mapCatalog map[string]models.Partner

func (c mapCatalog) Lookup(_ context.Context, serviceID string) (*models.Partner, error) {
	p, ok := c[serviceID]
	if !ok || !p.Active {
		return nil, ErrUnknownService
	}
	return &p, nil
}

var errStoreDown = errors.New("store down")
