package model

import (
	"time"
)

// NotificationStatus represents the delivery status of an email notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// EmailNotification is one completion-notification row inserted by the
// content pipeline once generation finishes. The dispatcher sends pending
// rows and marks them sent or failed; the billing pass never touches
// this table.
type EmailNotification struct {
	ID               int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentRequestID int64              `gorm:"column:content_request_id;not null;index" json:"content_request_id"`
	Email            string             `gorm:"size:255;not null" json:"email"`
	ProjectName      string             `gorm:"column:project_name;size:200" json:"project_name"`
	Status           NotificationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	SentAt           *time.Time         `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// TableName specifies the table name for GORM
func (EmailNotification) TableName() string {
	return "email_notifications"
}
