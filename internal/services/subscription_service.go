package services

import (
	"context"
	"errors"
	"fmt"
	"partnerhub-backend/internal/models"
	"partnerhub-backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const subscriptionCacheTTL = 5 * time.Minute

// SubscriptionService reads subscription status for the access core and applies
// status changes handed over by payment reconciliation.
type SubscriptionService struct {
	db     *gorm.DB
	cache  *redis.Client
	ledger *TransactionService
}

// NewSubscriptionService builds the service. cache may be nil.
func NewSubscriptionService(db *gorm.DB, cache *redis.Client, ledger *TransactionService) *SubscriptionService {
	return &SubscriptionService{db: db, cache: cache, ledger: ledger}
}

func subscriptionCacheKey(userID, partnerID string) string {
	return fmt.Sprintf("subscription:%s:%s", userID, partnerID)
}

// Status returns active or freemium. A user with no subscription row is freemium.
func (s *SubscriptionService) Status(ctx context.Context, userID, partnerID string) (models.SubscriptionStatus, error) {
	key := subscriptionCacheKey(userID, partnerID)
	if s.cache != nil {
		val, err := s.cache.Get(ctx, key).Result()
		if err == nil && models.SubscriptionStatus(val).Valid() {
			return models.SubscriptionStatus(val), nil
		}
	}

	status := models.SubscriptionStatusFreemium
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ? AND partner_id = ?", userID, partnerID).Take(&sub).Error
	switch {
	case err == nil:
		status = sub.Status
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, string(status), subscriptionCacheTTL).Err(); err != nil {
			logger.Log.Warn("failed to cache subscription status", zap.String("key", key), zap.Error(err))
		}
	}
	return status, nil
}

// SetStatus stores the status for (userID, partnerID). A change emits a ledger entry.
func (s *SubscriptionService) SetStatus(ctx context.Context, userID, partnerID string, status models.SubscriptionStatus, operator string) (*models.Subscription, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid subscription status %q", status)
	}

	var sub models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND partner_id = ?", userID, partnerID).Take(&sub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub = models.Subscription{UserID: userID, PartnerID: partnerID, Status: models.SubscriptionStatusFreemium}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if sub.Status == status {
			return nil
		}
		previous := sub.Status
		sub.Status = status
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		txType := models.TransactionTypeSubscriptionActivated
		if status != models.SubscriptionStatusActive {
			txType = models.TransactionTypeSubscriptionCancelled
		}
		return s.ledger.Record(tx, &models.Transaction{
			UserID:    userID,
			PartnerID: partnerID,
			Type:      txType,
			Reason:    fmt.Sprintf("subscription %s -> %s", previous, status),
			Operator:  operator,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Del(ctx, subscriptionCacheKey(userID, partnerID))
	}

	logger.Log.Info("subscription status updated",
		zap.String("user_id", userID),
		zap.String("partner_id", partnerID),
		zap.String("status", string(status)),
		zap.String("operator", operator))

	return &sub, nil
}
