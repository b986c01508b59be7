package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the outcome of one charge attempt
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentLog is the append-only audit record of one charge attempt.
// Exactly one row is written per attempt regardless of outcome, and rows
// are never updated or deleted. Failure counting for the suspension
// threshold reads from this table only.
type PaymentLog struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64           `gorm:"column:user_id;not null;index" json:"user_id"`
	OrderNumber   string          `gorm:"column:order_number;size:100;not null;uniqueIndex" json:"order_number"`
	BillingKeyID  int64           `gorm:"column:billing_key_id;not null" json:"billing_key_id"`
	Price         decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"price"`
	GoodName      string          `gorm:"column:good_name;size:200" json:"good_name"`
	BuyerName     string          `gorm:"column:buyer_name;size:100" json:"buyer_name"`
	BuyerTel      string          `gorm:"column:buyer_tel;size:20" json:"buyer_tel"`
	BuyerEmail    string          `gorm:"column:buyer_email;size:255" json:"buyer_email"`
	PaymentStatus PaymentStatus   `gorm:"column:payment_status;size:20;not null;index" json:"payment_status"`
	ResultCode    string          `gorm:"column:result_code;size:20" json:"result_code"`
	ResultMessage string          `gorm:"column:result_message;size:500" json:"result_message"`
	RawResponse   string          `gorm:"column:raw_response;type:text" json:"raw_response"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PaymentLog) TableName() string {
	return "payment_logs"
}
