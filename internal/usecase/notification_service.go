package usecase

import (
	"context"
	"sync/atomic"
	"time"

	domainErrors "github.com/amondhq/billing-service/internal/domain/errors"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	"github.com/amondhq/billing-service/internal/infrastructure/email"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"go.uber.org/zap"
)

// NotificationService drains pending email notifications through the
// mail sender. One undeliverable row is marked failed and skipped; it
// never blocks the rest of the queue.
type NotificationService struct {
	notificationRepo domainRepo.EmailNotificationRepository
	sender           email.Sender
	batchLimit       int
	logger           *zap.Logger

	running atomic.Bool
}

func NewNotificationService(
	notificationRepo domainRepo.EmailNotificationRepository,
	sender email.Sender,
	batchLimit int,
	logger *zap.Logger,
) *NotificationService {
	if batchLimit <= 0 {
		batchLimit = 20
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		sender:           sender,
		batchLimit:       batchLimit,
		logger:           logger,
	}
}

// DispatchPending sends queued notifications oldest first
func (s *NotificationService) DispatchPending(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return pkgErrors.NewAppError(pkgErrors.ErrConflict, "email dispatch skipped", domainErrors.ErrPassInProgress)
	}
	defer s.running.Store(false)

	pending, err := s.notificationRepo.Pending(ctx, s.batchLimit)
	if err != nil {
		return pkgErrors.Wrap(err, "pending notifications unavailable")
	}
	if len(pending) == 0 {
		return nil
	}

	var sent, failed int
	for _, notification := range pending {
		if err := s.sender.SendCompletionNotice(ctx, notification.Email, notification.ProjectName); err != nil {
			pkgErrors.LogError(s.logger, err, "notification email not sent",
				zap.Int64("notification_id", notification.ID),
				zap.String("email", notification.Email))
			if markErr := s.notificationRepo.MarkFailed(ctx, notification.ID); markErr != nil {
				pkgErrors.LogError(s.logger, markErr, "notification not marked failed",
					zap.Int64("notification_id", notification.ID))
			}
			failed++
			continue
		}

		if err := s.notificationRepo.MarkSent(ctx, notification.ID, time.Now()); err != nil {
			pkgErrors.LogError(s.logger, err, "notification not marked sent",
				zap.Int64("notification_id", notification.ID))
		}
		sent++
	}

	s.logger.Info("notification dispatch completed",
		zap.Int("sent", sent),
		zap.Int("failed", failed))
	return nil
}
