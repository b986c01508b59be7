package repository

import (
	"context"
	"time"

	domainErrors "github.com/amondhq/billing-service/internal/domain/errors"
	"github.com/amondhq/billing-service/internal/domain/model"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type membershipRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMembershipRepository(db *gorm.DB, logger *zap.Logger) domainRepo.MembershipRepository {
	return &membershipRepository{db: db, logger: logger}
}

func (r *membershipRepository) ExtendMembership(ctx context.Context, userID int64, newEndDate time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"membership_end_date": newEndDate,
			"updated_at":          time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("failed to extend membership",
			zap.Int64("user_id", userID),
			zap.Error(result.Error))
		return pkgErrors.Wrap(result.Error, "failed to extend membership")
	}

	if result.RowsAffected == 0 {
		return pkgErrors.NewAppError(pkgErrors.ErrNotFound, "failed to extend membership", domainErrors.ErrUserNotFound)
	}

	return nil
}

func (r *membershipRepository) ExpireMembership(ctx context.Context, userID int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"grade":             model.GradeBasic,
			"membership_status": model.MembershipStatusExpired,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("failed to expire membership",
			zap.Int64("user_id", userID),
			zap.Error(result.Error))
		return pkgErrors.Wrap(result.Error, "failed to expire membership")
	}

	if result.RowsAffected == 0 {
		return pkgErrors.NewAppError(pkgErrors.ErrNotFound, "failed to expire membership", domainErrors.ErrUserNotFound)
	}

	return nil
}

// ExpireOverdueMemberships downgrades pro users whose membership end date
// has passed. Guarded by status and date, so a back-to-back second run
// matches zero rows.
func (r *membershipRepository) ExpireOverdueMemberships(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("grade = ? AND membership_end_date IS NOT NULL AND membership_end_date < ? AND membership_status IN ?",
			model.GradePro, now,
			[]model.MembershipStatus{model.MembershipStatusActive, model.MembershipStatusCancelled}).
		Updates(map[string]interface{}{
			"grade":             model.GradeBasic,
			"membership_status": model.MembershipStatusExpired,
			"updated_at":        now,
		})

	if result.Error != nil {
		r.logger.Error("failed to expire overdue memberships", zap.Error(result.Error))
		return 0, pkgErrors.Wrap(result.Error, "failed to expire overdue memberships")
	}

	return result.RowsAffected, nil
}
