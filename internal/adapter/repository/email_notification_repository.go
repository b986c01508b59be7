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

type emailNotificationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewEmailNotificationRepository(db *gorm.DB, logger *zap.Logger) domainRepo.EmailNotificationRepository {
	return &emailNotificationRepository{db: db, logger: logger}
}

func (r *emailNotificationRepository) Pending(ctx context.Context, limit int) ([]model.EmailNotification, error) {
	var rows []model.EmailNotification
	err := r.db.WithContext(ctx).
		Where("status = ?", model.NotificationStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		r.logger.Error("failed to load pending notifications", zap.Error(err))
		return nil, pkgErrors.Wrap(err, "failed to load pending notifications")
	}
	return rows, nil
}

func (r *emailNotificationRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.EmailNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  model.NotificationStatusSent,
			"sent_at": at,
		})

	if result.Error != nil {
		r.logger.Error("failed to mark notification sent",
			zap.Int64("notification_id", id),
			zap.Error(result.Error))
		return pkgErrors.Wrap(result.Error, "failed to mark notification sent")
	}

	return nil
}

func (r *emailNotificationRepository) MarkFailed(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.EmailNotification{}).
		Where("id = ?", id).
		Update("status", model.NotificationStatusFailed)

	if result.Error != nil {
		r.logger.Error("failed to mark notification failed",
			zap.Int64("notification_id", id),
			zap.Error(result.Error))
		return pkgErrors.Wrap(result.Error, "failed to mark notification failed")
	}

	return nil
}
