package repository

import (
	"context"
	"time"

	"github.com/amondhq/billing-service/internal/domain/model"
)

// PaymentLogRepository is the append-only audit side of the billing ledger
type PaymentLogRepository interface {
	// RecordAttempt appends one audit row. Called exactly once per charge
	// attempt on every outcome path.
	RecordAttempt(ctx context.Context, entry *model.PaymentLog) error

	// RecentFailureCount counts failed attempts for a user since the given
	// time. Drives the suspension threshold.
	RecentFailureCount(ctx context.Context, userID int64, since time.Time) (int64, error)

	// ListByUser returns the most recent attempts for a user, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.PaymentLog, error)
}
