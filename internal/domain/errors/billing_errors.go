package errors

import (
	"errors"
)

var (
	// ErrPassInProgress is returned when a billing pass is requested while
	// a previous one has not finished. The new pass is skipped, not queued.
	ErrPassInProgress = errors.New("billing pass already in progress")

	// ErrNoActiveBillingKey indicates a due subscription without a usable key
	ErrNoActiveBillingKey = errors.New("no active billing key for user")

	// ErrSubscriptionNotFound indicates a missing subscription row
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrUserNotFound indicates a missing user row
	ErrUserNotFound = errors.New("user not found")
)
