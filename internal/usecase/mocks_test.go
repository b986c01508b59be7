package usecase

import (
	"context"
	"time"

	"github.com/amondhq/billing-service/internal/domain/model"
	"github.com/amondhq/billing-service/internal/domain/provider"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	"github.com/stretchr/testify/mock"
)

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) DueSubscriptions(ctx context.Context, now time.Time, limit int) ([]*domainRepo.DueSubscription, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainRepo.DueSubscription), args.Error(1)
}

func (m *mockSubscriptionRepo) AdvanceBillingDate(ctx context.Context, subscriptionID int64, next time.Time) error {
	args := m.Called(ctx, subscriptionID, next)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) Suspend(ctx context.Context, subscriptionID int64, at time.Time) error {
	args := m.Called(ctx, subscriptionID, at)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) ExpireCancelled(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriptionRepo) ExpireSuspended(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockPaymentLogRepo struct {
	mock.Mock
}

func (m *mockPaymentLogRepo) RecordAttempt(ctx context.Context, entry *model.PaymentLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockPaymentLogRepo) RecentFailureCount(ctx context.Context, userID int64, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPaymentLogRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.PaymentLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentLog), args.Error(1)
}

type mockMembershipRepo struct {
	mock.Mock
}

func (m *mockMembershipRepo) ExtendMembership(ctx context.Context, userID int64, newEndDate time.Time) error {
	args := m.Called(ctx, userID, newEndDate)
	return args.Error(0)
}

func (m *mockMembershipRepo) ExpireMembership(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockMembershipRepo) ExpireOverdueMemberships(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockPaymentProvider struct {
	mock.Mock
}

func (m *mockPaymentProvider) Charge(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ChargeResult), args.Error(1)
}

func (m *mockPaymentProvider) Name() string {
	return "mock"
}

type mockCipher struct {
	mock.Mock
}

func (m *mockCipher) Seal(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *mockCipher) Open(sealed string) (string, error) {
	args := m.Called(sealed)
	return args.String(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Pending(ctx context.Context, limit int) ([]model.EmailNotification, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EmailNotification), args.Error(1)
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendCompletionNotice(ctx context.Context, to, projectName string) error {
	args := m.Called(ctx, to, projectName)
	return args.Error(0)
}
