package repository

import (
	"context"
	"time"

	"github.com/amondhq/billing-service/internal/domain/model"
)

// EmailNotificationRepository tracks completion-notification delivery state
type EmailNotificationRepository interface {
	// Pending returns undelivered notifications, oldest first.
	Pending(ctx context.Context, limit int) ([]model.EmailNotification, error)

	// MarkSent records a successful delivery.
	MarkSent(ctx context.Context, id int64, at time.Time) error

	// MarkFailed records a delivery failure.
	MarkFailed(ctx context.Context, id int64) error
}
