package usecase

import (
	"time"
)

// Billing event types published for the notification subsystem
const (
	EventChargeSucceeded       = "billing.charge.succeeded"
	EventChargeFailed          = "billing.charge.failed"
	EventSubscriptionSuspended = "billing.subscription.suspended"
)

// BillingEvent is the payload published to the billing event channel.
// Publishing is fire-and-forget: a publish failure is logged and never
// fails the charge attempt it describes.
type BillingEvent struct {
	Type           string    `json:"type"`
	UserID         int64     `json:"user_id"`
	SubscriptionID int64     `json:"subscription_id"`
	OrderNumber    string    `json:"order_number,omitempty"`
	Amount         string    `json:"amount,omitempty"`
	ResultCode     string    `json:"result_code,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
