package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Scan implements sql.Scanner interface
func (s *SubscriptionStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = SubscriptionStatus(v)
	case []byte:
		*s = SubscriptionStatus(v)
	default:
		*s = SubscriptionStatusExpired
	}
	return nil
}

// Value implements driver.Valuer interface
func (s SubscriptionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Plan type constants
const (
	PlanTypeBasic = "basic"
	PlanTypePro   = "pro"
)

// Subscription represents a user's recurring payment subscription.
// NextBillingDate only moves forward: it is advanced after a successful
// charge and never rewound. Suspended and expired subscriptions are
// excluded from billing selection.
type Subscription struct {
	ID              int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64              `gorm:"column:user_id;not null;index" json:"user_id"`
	PlanType        string             `gorm:"column:plan_type;size:20;not null" json:"plan_type"`
	Price           decimal.Decimal    `gorm:"type:decimal(12,0);not null" json:"price"`
	Status          SubscriptionStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	StartDate       time.Time          `gorm:"column:start_date;not null" json:"start_date"`
	NextBillingDate time.Time          `gorm:"column:next_billing_date;not null;index" json:"next_billing_date"`
	SuspendedAt     *time.Time         `gorm:"column:suspended_at" json:"suspended_at,omitempty"`
	CancelledAt     *time.Time         `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "payment_subscriptions"
}
