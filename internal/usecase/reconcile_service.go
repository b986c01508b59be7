package usecase

import (
	"context"
	"fmt"
	"time"

	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"go.uber.org/zap"
)

// ReconcileResult reports how many rows each reconciliation category
// touched in one pass.
type ReconcileResult struct {
	OverdueMemberships   int64 `json:"overdue_memberships"`
	CancelledToExpired   int64 `json:"cancelled_to_expired"`
	AbandonedSuspensions int64 `json:"abandoned_suspensions"`
}

// ReconcileService sweeps state that the billing pass does not touch:
// memberships past their paid-through date, cancelled subscriptions past
// their final period, and suspensions nobody recovered. Each category
// runs independently so one failing update does not block the others.
type ReconcileService struct {
	subscriptionRepo domainRepo.SubscriptionRepository
	membershipRepo   domainRepo.MembershipRepository
	suspensionGrace  time.Duration
	logger           *zap.Logger
}

func NewReconcileService(
	subscriptionRepo domainRepo.SubscriptionRepository,
	membershipRepo domainRepo.MembershipRepository,
	suspensionGrace time.Duration,
	logger *zap.Logger,
) *ReconcileService {
	if suspensionGrace <= 0 {
		suspensionGrace = 7 * 24 * time.Hour
	}
	return &ReconcileService{
		subscriptionRepo: subscriptionRepo,
		membershipRepo:   membershipRepo,
		suspensionGrace:  suspensionGrace,
		logger:           logger,
	}
}

// Run executes one reconciliation pass. Every category is attempted even
// when an earlier one fails; the first error is returned after all have
// run.
func (s *ReconcileService) Run(ctx context.Context) (*ReconcileResult, error) {
	now := time.Now()
	result := &ReconcileResult{}
	var firstErr error

	overdue, err := s.membershipRepo.ExpireOverdueMemberships(ctx, now)
	if err != nil {
		pkgErrors.LogError(s.logger, err, "overdue membership sweep failed")
		firstErr = fmt.Errorf("expire overdue memberships: %w", err)
	} else {
		result.OverdueMemberships = overdue
	}

	cancelled, err := s.subscriptionRepo.ExpireCancelled(ctx, now)
	if err != nil {
		pkgErrors.LogError(s.logger, err, "cancelled subscription sweep failed")
		if firstErr == nil {
			firstErr = fmt.Errorf("expire cancelled subscriptions: %w", err)
		}
	} else {
		result.CancelledToExpired = cancelled
	}

	abandoned, err := s.subscriptionRepo.ExpireSuspended(ctx, now.Add(-s.suspensionGrace))
	if err != nil {
		pkgErrors.LogError(s.logger, err, "abandoned suspension sweep failed")
		if firstErr == nil {
			firstErr = fmt.Errorf("expire suspended subscriptions: %w", err)
		}
	} else {
		result.AbandonedSuspensions = abandoned
	}

	s.logger.Info("reconciliation pass completed",
		zap.Int64("overdue_memberships", result.OverdueMemberships),
		zap.Int64("cancelled_to_expired", result.CancelledToExpired),
		zap.Int64("abandoned_suspensions", result.AbandonedSuspensions))

	return result, firstErr
}
