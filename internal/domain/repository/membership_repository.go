package repository

import (
	"context"
	"time"
)

// MembershipRepository mutates the membership fields on the user row
type MembershipRepository interface {
	// ExtendMembership sets the membership end date after a successful charge.
	ExtendMembership(ctx context.Context, userID int64, newEndDate time.Time) error

	// ExpireMembership downgrades a user to basic and marks the membership
	// expired. Used on the suspension path.
	ExpireMembership(ctx context.Context, userID int64) error

	// ExpireOverdueMemberships bulk-downgrades memberships whose end date
	// has passed while still active or cancelled. Returns rows affected.
	ExpireOverdueMemberships(ctx context.Context, now time.Time) (int64, error)
}
