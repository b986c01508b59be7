package model

import (
	"time"
)

// MembershipStatus represents the status of a user's membership
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusCancelled MembershipStatus = "cancelled"
	MembershipStatusExpired   MembershipStatus = "expired"
)

// Membership grade constants
const (
	GradeBasic = "basic"
	GradePro   = "pro"
)

// User carries the membership fields the billing domain mutates: the
// orchestrator extends MembershipEndDate on a successful charge, the
// reconciler downgrades expired memberships to basic.
type User struct {
	ID                int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Email             string           `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name              string           `gorm:"size:100" json:"name"`
	Phone             string           `gorm:"size:20" json:"phone"`
	Grade             string           `gorm:"size:20;not null;default:'basic'" json:"grade"`
	MembershipStatus  MembershipStatus `gorm:"column:membership_status;size:20;not null;default:'active'" json:"membership_status"`
	MembershipEndDate *time.Time       `gorm:"column:membership_end_date" json:"membership_end_date,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
