package database

import (
	"github.com/amondhq/billing-service/internal/adapter/repository"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories bundles the ledger implementations handed to the usecases
type Repositories struct {
	Subscription      domainRepo.SubscriptionRepository
	PaymentLog        domainRepo.PaymentLogRepository
	Membership        domainRepo.MembershipRepository
	EmailNotification domainRepo.EmailNotificationRepository
}

// NewRepositories initializes all repository implementations
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Subscription:      repository.NewSubscriptionRepository(db, logger),
		PaymentLog:        repository.NewPaymentLogRepository(db, logger),
		Membership:        repository.NewMembershipRepository(db, logger),
		EmailNotification: repository.NewEmailNotificationRepository(db, logger),
	}
}
