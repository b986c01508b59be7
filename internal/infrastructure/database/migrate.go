package database

import (
	"github.com/amondhq/billing-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.User{},
		&model.Subscription{},
		&model.BillingKey{},
		&model.PaymentLog{},
		&model.EmailNotification{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes GORM doesn't handle
func createCustomIndexes(db *gorm.DB) error {
	// The billing pass always scans active rows by due date
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_subscriptions_due ON payment_subscriptions (next_billing_date) WHERE status = 'active'`).Error; err != nil {
		return err
	}

	// Failure counting scans failed rows in a trailing window
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_logs_failed ON payment_logs (user_id, created_at) WHERE payment_status = 'failed'`).Error; err != nil {
		return err
	}

	return nil
}
