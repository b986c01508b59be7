package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/amondhq/billing-service/internal/domain/model"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Subscription{},
		&model.BillingKey{},
		&model.PaymentLog{},
		&model.EmailNotification{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, id int64) model.User {
	t.Helper()

	endDate := time.Now().AddDate(0, 1, 0)
	user := model.User{
		ID:                id,
		Email:             fmt.Sprintf("user%d@example.com", id),
		Name:              "홍길동",
		Phone:             "01012345678",
		Grade:             model.GradePro,
		MembershipStatus:  model.MembershipStatusActive,
		MembershipEndDate: &endDate,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedBillingKey(t *testing.T, db *gorm.DB, userID int64, status model.BillingKeyStatus) model.BillingKey {
	t.Helper()

	key := model.BillingKey{
		UserID:       userID,
		EncryptedKey: "sealed",
		CardNumber:   "543211******1234",
		Status:       status,
	}
	require.NoError(t, db.Create(&key).Error)
	return key
}

func seedSubscription(t *testing.T, db *gorm.DB, userID int64, status model.SubscriptionStatus, nextBilling time.Time) model.Subscription {
	t.Helper()

	sub := model.Subscription{
		UserID:          userID,
		PlanType:        model.PlanTypePro,
		Price:           decimal.NewFromInt(9900),
		Status:          status,
		StartDate:       nextBilling.AddDate(0, -1, 0),
		NextBillingDate: nextBilling,
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}
