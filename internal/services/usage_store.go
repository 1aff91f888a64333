package services

import (
	"context"
	"errors"
	"fmt"
	"partnerhub-backend/internal/models"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageStore keeps per-user, per-day free access counters.
type UsageStore interface {
	// Count returns how many free accesses userID consumed on day.
	Count(ctx context.Context, userID, day string) (int64, error)
	// TryConsume increments the counter only if it is below limit, atomically, and
	// reports whether it did.
	TryConsume(ctx context.Context, userID, day string, limit int64) (bool, error)
}

// GormUsageStore persists usage in the usage_records table.
type GormUsageStore struct {
	db *gorm.DB
}

func NewGormUsageStore(db *gorm.DB) *GormUsageStore {
	return &GormUsageStore{db: db}
}

func (s *GormUsageStore) Count(ctx context.Context, userID, day string) (int64, error) {
	var record models.UsageRecord
	err := s.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Count, nil
}

// TryConsume upserts the day's row and then bumps it with a guarded UPDATE, so two
// concurrent requests cannot both take the last free access.
func (s *GormUsageStore) TryConsume(ctx context.Context, userID, day string, limit int64) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	granted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.UsageRecord{UserID: userID, Day: day}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		result := tx.Model(&models.UsageRecord{}).
			Where("user_id = ? AND day = ? AND access_count < ?", userID, day, limit).
			Updates(map[string]interface{}{
				"access_count": gorm.Expr("access_count + 1"),
				"updated_at":   time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		granted = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("consume usage: %w", err)
	}
	return granted, nil
}

const usageKeyPrefix = "usage:"

// usageKeyTTL outlives the UTC day so late readers of "today" still find the key.
const usageKeyTTL = 48 * time.Hour

var tryConsumeScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return 0
end
redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return 1
`)

// RedisUsageStore keeps counters in Redis with a compare-and-increment script.
type RedisUsageStore struct {
	client *redis.Client
}

func NewRedisUsageStore(client *redis.Client) *RedisUsageStore {
	return &RedisUsageStore{client: client}
}

func usageKey(userID, day string) string {
	return usageKeyPrefix + userID + ":" + day
}

func (s *RedisUsageStore) Count(ctx context.Context, userID, day string) (int64, error) {
	n, err := s.client.Get(ctx, usageKey(userID, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *RedisUsageStore) TryConsume(ctx context.Context, userID, day string, limit int64) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	res, err := tryConsumeScript.Run(ctx, s.client,
		[]string{usageKey(userID, day)}, limit, int64(usageKeyTTL/time.Second)).Int64()
	if err != nil {
		return false, fmt.Errorf("consume usage: %w", err)
	}
	return res == 1, nil
}
