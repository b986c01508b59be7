package repository

import (
	"context"
	"time"

	"github.com/amondhq/billing-service/internal/domain/model"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPaymentLogRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentLogRepository {
	return &paymentLogRepository{db: db, logger: logger}
}

// RecordAttempt appends the audit row. The table is append-only: this is
// the only write path, and nothing updates or deletes rows afterward.
func (r *paymentLogRepository) RecordAttempt(ctx context.Context, entry *model.PaymentLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.Error("failed to record payment attempt",
			zap.Int64("user_id", entry.UserID),
			zap.String("order_number", entry.OrderNumber),
			zap.Error(err))
		return pkgErrors.Wrap(err, "failed to record payment attempt")
	}
	return nil
}

func (r *paymentLogRepository) RecentFailureCount(ctx context.Context, userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PaymentLog{}).
		Where("user_id = ? AND payment_status = ? AND created_at > ?",
			userID, model.PaymentStatusFailed, since).
		Count(&count).Error
	if err != nil {
		r.logger.Error("failed to count recent failures",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return 0, pkgErrors.Wrap(err, "failed to count recent failures")
	}
	return count, nil
}

func (r *paymentLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.PaymentLog, error) {
	var logs []model.PaymentLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		r.logger.Error("failed to list payment logs",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, pkgErrors.Wrap(err, "failed to list payment logs")
	}
	return logs, nil
}
