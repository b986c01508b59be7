package repository

import (
	"context"
	"time"

	"github.com/amondhq/billing-service/internal/domain/model"
)

// DueSubscription is one row of the billing selection: the subscription
// joined with its current active billing key and the owning user.
type DueSubscription struct {
	Subscription model.Subscription
	BillingKey   model.BillingKey
	User         model.User
}

// SubscriptionRepository is the subscription side of the billing ledger
type SubscriptionRepository interface {
	// DueSubscriptions selects up to limit subscriptions eligible for
	// charging: active, non-basic plan, next billing date at or before now,
	// with an active billing key. Ordered oldest-due first.
	DueSubscriptions(ctx context.Context, now time.Time, limit int) ([]*DueSubscription, error)

	// AdvanceBillingDate moves the next billing date forward after a
	// successful charge.
	AdvanceBillingDate(ctx context.Context, subscriptionID int64, next time.Time) error

	// Suspend transitions a subscription to suspended once the failure
	// threshold is crossed.
	Suspend(ctx context.Context, subscriptionID int64, at time.Time) error

	// ExpireCancelled bulk-expires cancelled subscriptions whose next
	// billing date has passed. Returns the number of rows affected.
	ExpireCancelled(ctx context.Context, now time.Time) (int64, error)

	// ExpireSuspended bulk-expires subscriptions that have been suspended
	// since before the cutoff. Returns the number of rows affected.
	ExpireSuspended(ctx context.Context, cutoff time.Time) (int64, error)
}
