package repository

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/amondhq/billing-service/internal/domain/errors"
	"github.com/amondhq/billing-service/internal/domain/model"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{db: db, logger: logger}
}

// DueSubscriptions selects the oldest-due active subscriptions that have
// an active billing key, bounded by limit. The bound caps gateway load
// per pass; rows left behind are picked up by a later pass.
func (r *subscriptionRepository) DueSubscriptions(ctx context.Context, now time.Time, limit int) ([]*domainRepo.DueSubscription, error) {
	var subs []model.Subscription

	err := r.db.WithContext(ctx).
		Where("status = ?", model.SubscriptionStatusActive).
		Where("plan_type <> ?", model.PlanTypeBasic).
		Where("next_billing_date <= ?", now).
		Where("EXISTS (SELECT 1 FROM billing_keys bk WHERE bk.user_id = payment_subscriptions.user_id AND bk.status = ?)",
			model.BillingKeyStatusActive).
		Order("next_billing_date ASC").
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		r.logger.Error("failed to select due subscriptions", zap.Error(err))
		return nil, pkgErrors.Wrap(err, "failed to select due subscriptions")
	}

	due := make([]*domainRepo.DueSubscription, 0, len(subs))
	for _, sub := range subs {
		row, err := r.loadDueRow(ctx, sub)
		if err != nil {
			// A due subscription whose user or key row vanished between the
			// selection and the load is skipped, not fatal to the pass.
			r.logger.Warn("skipping due subscription with incomplete rows",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("user_id", sub.UserID),
				zap.Error(err))
			continue
		}
		due = append(due, row)
	}

	return due, nil
}

func (r *subscriptionRepository) loadDueRow(ctx context.Context, sub model.Subscription) (*domainRepo.DueSubscription, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, sub.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.NewAppError(pkgErrors.ErrNotFound, "due subscription has no user row", domainErrors.ErrUserNotFound)
		}
		return nil, pkgErrors.Wrap(err, "failed to load user")
	}

	var key model.BillingKey
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", sub.UserID, model.BillingKeyStatusActive).
		Order("created_at DESC").
		First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.NewAppError(pkgErrors.ErrNotFound, "due subscription has no active key", domainErrors.ErrNoActiveBillingKey)
		}
		return nil, pkgErrors.Wrap(err, "failed to load billing key")
	}

	return &domainRepo.DueSubscription{
		Subscription: sub,
		BillingKey:   key,
		User:         user,
	}, nil
}

func (r *subscriptionRepository) AdvanceBillingDate(ctx context.Context, subscriptionID int64, next time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"next_billing_date": next,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("failed to advance billing date",
			zap.Int64("subscription_id", subscriptionID),
			zap.Error(result.Error))
		return pkgErrors.Wrap(result.Error, "failed to advance billing date")
	}

	if result.RowsAffected == 0 {
		return pkgErrors.NewAppError(pkgErrors.ErrNotFound, "failed to advance billing date", domainErrors.ErrSubscriptionNotFound)
	}

	return nil
}

func (r *subscriptionRepository) Suspend(ctx context.Context, subscriptionID int64, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status = ?", subscriptionID, model.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":       model.SubscriptionStatusSuspended,
			"suspended_at": at,
			"updated_at":   at,
		})

	if result.Error != nil {
		r.logger.Error("failed to suspend subscription",
			zap.Int64("subscription_id", subscriptionID),
			zap.Error(result.Error))
		return pkgErrors.Wrap(result.Error, "failed to suspend subscription")
	}

	if result.RowsAffected == 0 {
		// Already suspended or gone; either way the desired state holds.
		r.logger.Warn("suspend affected no rows",
			zap.Int64("subscription_id", subscriptionID))
	}

	return nil
}

func (r *subscriptionRepository) ExpireCancelled(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("status = ? AND next_billing_date < ?", model.SubscriptionStatusCancelled, now).
		Updates(map[string]interface{}{
			"status":     model.SubscriptionStatusExpired,
			"updated_at": now,
		})

	if result.Error != nil {
		r.logger.Error("failed to expire cancelled subscriptions", zap.Error(result.Error))
		return 0, pkgErrors.Wrap(result.Error, "failed to expire cancelled subscriptions")
	}

	return result.RowsAffected, nil
}

func (r *subscriptionRepository) ExpireSuspended(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("status = ? AND suspended_at IS NOT NULL AND suspended_at < ?",
			model.SubscriptionStatusSuspended, cutoff).
		Updates(map[string]interface{}{
			"status":     model.SubscriptionStatusExpired,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("failed to expire suspended subscriptions", zap.Error(result.Error))
		return 0, pkgErrors.Wrap(result.Error, "failed to expire suspended subscriptions")
	}

	return result.RowsAffected, nil
}
