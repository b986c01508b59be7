package model

import (
	"time"
)

// BillingKeyStatus represents the status of a stored billing key
type BillingKeyStatus string

const (
	BillingKeyStatusActive  BillingKeyStatus = "active"
	BillingKeyStatusRevoked BillingKeyStatus = "revoked"
)

// BillingKey is a tokenized card credential issued by the payment gateway.
// The token is encrypted at rest; only card display fields are stored in
// the clear. Read-only to the billing pass.
type BillingKey struct {
	ID           int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64            `gorm:"column:user_id;not null;index" json:"user_id"`
	EncryptedKey string           `gorm:"column:encrypted_key;type:text;not null" json:"-"`
	CardNumber   string           `gorm:"column:card_number;size:20" json:"card_number"`
	CardName     string           `gorm:"column:card_name;size:50" json:"card_name"`
	Status       BillingKeyStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	RevokedAt    *time.Time       `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (BillingKey) TableName() string {
	return "billing_keys"
}
