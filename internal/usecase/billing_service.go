package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/amondhq/billing-service/internal/config"
	domainErrors "github.com/amondhq/billing-service/internal/domain/errors"
	"github.com/amondhq/billing-service/internal/domain/model"
	"github.com/amondhq/billing-service/internal/domain/provider"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	"github.com/amondhq/billing-service/internal/infrastructure/crypto"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"github.com/amondhq/billing-service/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingService drives due subscriptions through one billing pass:
// select, charge, record, transition. Subscriptions are processed
// sequentially with a fixed pacing delay between gateway calls to stay
// inside the gateway's throughput limits.
type BillingService struct {
	subscriptionRepo domainRepo.SubscriptionRepository
	paymentLogRepo   domainRepo.PaymentLogRepository
	membershipRepo   domainRepo.MembershipRepository
	gateway          provider.PaymentProvider
	cipher           crypto.Cipher
	events           messaging.Publisher // may be nil
	eventChannel     string
	planTable        map[string]decimal.Decimal
	cfg              config.BillingConfig
	logger           *zap.Logger

	// running guards against overlapping passes; an invocation that
	// arrives while a pass is in flight is skipped, not queued.
	running atomic.Bool
}

func NewBillingService(
	subscriptionRepo domainRepo.SubscriptionRepository,
	paymentLogRepo domainRepo.PaymentLogRepository,
	membershipRepo domainRepo.MembershipRepository,
	gateway provider.PaymentProvider,
	cipher crypto.Cipher,
	events messaging.Publisher,
	eventChannel string,
	cfg config.BillingConfig,
	logger *zap.Logger,
) (*BillingService, error) {
	planTable, err := cfg.PlanTable()
	if err != nil {
		return nil, fmt.Errorf("invalid plan price table: %w", err)
	}

	return &BillingService{
		subscriptionRepo: subscriptionRepo,
		paymentLogRepo:   paymentLogRepo,
		membershipRepo:   membershipRepo,
		gateway:          gateway,
		cipher:           cipher,
		events:           events,
		eventChannel:     eventChannel,
		planTable:        planTable,
		cfg:              cfg,
		logger:           logger,
	}, nil
}

// InProgress reports whether a billing pass is currently running
func (s *BillingService) InProgress() bool {
	return s.running.Load()
}

// RunBillingPass executes one billing pass. Returns ErrPassInProgress if
// a previous pass has not finished. A failure of the due-subscription
// query aborts the pass; a failure inside one subscription's attempt
// never does.
func (s *BillingService) RunBillingPass(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("billing pass skipped: previous pass still in flight")
		return pkgErrors.NewAppError(pkgErrors.ErrConflict, "billing pass skipped", domainErrors.ErrPassInProgress)
	}
	defer s.running.Store(false)

	now := time.Now()
	due, err := s.subscriptionRepo.DueSubscriptions(ctx, now, s.cfg.BatchLimit)
	if err != nil {
		return pkgErrors.Wrap(err, "billing pass aborted")
	}

	if len(due) == 0 {
		s.logger.Debug("billing pass: nothing due")
		return nil
	}

	s.logger.Info("billing pass started",
		zap.Int("due_count", len(due)),
		zap.Int("batch_limit", s.cfg.BatchLimit))

	for i, row := range due {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return err
			}
		}
		s.processOne(ctx, row)
	}

	s.logger.Info("billing pass completed", zap.Int("processed", len(due)))
	return nil
}

// pace waits the configured delay between gateway calls
func (s *BillingService) pace(ctx context.Context) error {
	if s.cfg.PacingDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(s.cfg.PacingDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processOne runs the attempt -> log -> transition pipeline for a single
// subscription. Every outcome path writes exactly one payment log row
// before any state transition, and nothing here escapes to abort the pass.
func (s *BillingService) processOne(ctx context.Context, row *domainRepo.DueSubscription) {
	sub := row.Subscription
	amount := s.chargeAmount(sub)
	result := s.charge(ctx, row, amount)

	entry := &model.PaymentLog{
		UserID:        sub.UserID,
		OrderNumber:   result.OrderNumber,
		BillingKeyID:  row.BillingKey.ID,
		Price:         amount,
		GoodName:      s.cfg.OrderName,
		BuyerName:     buyerName(row.User),
		BuyerTel:      buyerTel(row.User),
		BuyerEmail:    row.User.Email,
		PaymentStatus: model.PaymentStatusFailed,
		ResultCode:    result.ResultCode,
		ResultMessage: result.ResultMessage,
		RawResponse:   result.RawResponse,
	}
	if result.Success {
		entry.PaymentStatus = model.PaymentStatusSuccess
	}

	if err := s.paymentLogRepo.RecordAttempt(ctx, entry); err != nil {
		// The audit row is the failure-count evidence; losing it is worse
		// than losing the transition, so it is logged loudly.
		pkgErrors.LogError(s.logger, err, "payment attempt not recorded",
			zap.Int64("user_id", sub.UserID),
			zap.String("order_number", result.OrderNumber))
	}

	if result.Success {
		s.applySuccess(ctx, row, result, amount)
	} else {
		s.applyFailure(ctx, row, result, amount)
	}
}

// charge decrypts the stored billing key and submits the gateway call.
// Any outcome that never reached a gateway verdict is converted into a
// failed result so the caller still records the attempt.
func (s *BillingService) charge(ctx context.Context, row *domainRepo.DueSubscription, amount decimal.Decimal) *provider.ChargeResult {
	sub := row.Subscription

	token, err := s.cipher.Open(row.BillingKey.EncryptedKey)
	if err != nil {
		s.logger.Error("stored billing key is unusable",
			zap.Int64("user_id", sub.UserID),
			zap.Int64("billing_key_id", row.BillingKey.ID),
			zap.Error(err))
		return &provider.ChargeResult{
			Success:       false,
			OrderNumber:   fallbackOrderNumber(sub.UserID),
			ResultCode:    provider.ResultCodeClientError,
			ResultMessage: "billing key unusable",
		}
	}

	result, err := s.gateway.Charge(ctx, &provider.ChargeRequest{
		UserID:     sub.UserID,
		BillingKey: token,
		Amount:     amount,
		GoodName:   s.cfg.OrderName,
		BuyerName:  buyerName(row.User),
		BuyerEmail: row.User.Email,
		BuyerTel:   buyerTel(row.User),
	})
	if err != nil || result == nil {
		message := "charge attempt could not be made"
		if err != nil {
			message = err.Error()
		}
		s.logger.Error("gateway charge could not be made",
			zap.Int64("user_id", sub.UserID),
			zap.Error(err))
		return &provider.ChargeResult{
			Success:       false,
			OrderNumber:   fallbackOrderNumber(sub.UserID),
			ResultCode:    provider.ResultCodeClientError,
			ResultMessage: message,
		}
	}

	return result
}

// applySuccess advances the billing date one period from now (not from
// the overdue date, so a delayed pass does not compound drift) and
// extends the membership to match.
func (s *BillingService) applySuccess(ctx context.Context, row *domainRepo.DueSubscription, result *provider.ChargeResult, amount decimal.Decimal) {
	sub := row.Subscription
	next := s.cfg.NextBillingDate(time.Now())

	if err := s.subscriptionRepo.AdvanceBillingDate(ctx, sub.ID, next); err != nil {
		// The log row is already durable; the payment-log-vs-billing-date
		// divergence is recovered by audit, not hidden here.
		pkgErrors.LogError(s.logger, err, "billing date not advanced after successful charge",
			zap.Int64("subscription_id", sub.ID),
			zap.String("order_number", result.OrderNumber))
	}

	if err := s.membershipRepo.ExtendMembership(ctx, sub.UserID, next); err != nil {
		pkgErrors.LogError(s.logger, err, "membership not extended after successful charge",
			zap.Int64("user_id", sub.UserID),
			zap.String("order_number", result.OrderNumber))
	}

	s.logger.Info("recurring charge succeeded",
		zap.Int64("user_id", sub.UserID),
		zap.Int64("subscription_id", sub.ID),
		zap.String("order_number", result.OrderNumber),
		zap.String("amount", amount.String()),
		zap.Time("next_billing_date", next))

	s.publish(ctx, BillingEvent{
		Type:           EventChargeSucceeded,
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		OrderNumber:    result.OrderNumber,
		Amount:         amount.String(),
		OccurredAt:     time.Now(),
	})
}

// applyFailure checks the trailing failure window and suspends the
// subscription once the threshold is crossed. Transport errors and
// gateway rejections count identically: an unreachable gateway protects
// against wasted retries the same way a declined card does.
func (s *BillingService) applyFailure(ctx context.Context, row *domainRepo.DueSubscription, result *provider.ChargeResult, amount decimal.Decimal) {
	sub := row.Subscription

	s.publish(ctx, BillingEvent{
		Type:           EventChargeFailed,
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		OrderNumber:    result.OrderNumber,
		Amount:         amount.String(),
		ResultCode:     result.ResultCode,
		OccurredAt:     time.Now(),
	})

	since := time.Now().Add(-s.cfg.FailureWindow)
	count, err := s.paymentLogRepo.RecentFailureCount(ctx, sub.UserID, since)
	if err != nil {
		pkgErrors.LogError(s.logger, err, "failure count unavailable, suspension check skipped",
			zap.Int64("user_id", sub.UserID))
		return
	}

	if count < int64(s.cfg.FailureThreshold) {
		s.logger.Warn("recurring charge failed",
			zap.Int64("user_id", sub.UserID),
			zap.Int64("subscription_id", sub.ID),
			zap.String("result_code", result.ResultCode),
			zap.Int64("recent_failures", count))
		return
	}

	now := time.Now()
	if err := s.subscriptionRepo.Suspend(ctx, sub.ID, now); err != nil {
		pkgErrors.LogError(s.logger, err, "subscription not suspended after repeated failures",
			zap.Int64("subscription_id", sub.ID))
	}
	if err := s.membershipRepo.ExpireMembership(ctx, sub.UserID); err != nil {
		pkgErrors.LogError(s.logger, err, "membership not expired after repeated failures",
			zap.Int64("user_id", sub.UserID))
	}

	s.logger.Warn("subscription suspended after repeated failures",
		zap.Int64("user_id", sub.UserID),
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("recent_failures", count),
		zap.Int("threshold", s.cfg.FailureThreshold))

	s.publish(ctx, BillingEvent{
		Type:           EventSubscriptionSuspended,
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		OccurredAt:     now,
	})
}

// chargeAmount resolves the price from the plan table, falling back to
// the price stored on the subscription row when the plan is unknown.
// The fallback is policy, not silent defaulting: it is logged.
func (s *BillingService) chargeAmount(sub model.Subscription) decimal.Decimal {
	if price, ok := s.planTable[sub.PlanType]; ok {
		return price
	}
	s.logger.Warn("plan not in price table, using stored subscription price",
		zap.String("plan_type", sub.PlanType),
		zap.Int64("subscription_id", sub.ID),
		zap.String("stored_price", sub.Price.String()))
	return sub.Price
}

func (s *BillingService) publish(ctx context.Context, event BillingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, s.eventChannel, event); err != nil {
		s.logger.Warn("billing event not published",
			zap.String("event_type", event.Type),
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
	}
}

// fallbackOrderNumber mirrors the gateway's order-reference format for
// attempts that failed before a reference was issued, keeping the audit
// log uniformly keyed.
func fallbackOrderNumber(userID int64) string {
	return fmt.Sprintf("AMOND_AUTO_%d_%d_%s", userID, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func buyerName(user model.User) string {
	if user.Name != "" {
		return user.Name
	}
	return "회원"
}

func buyerTel(user model.User) string {
	if user.Phone != "" {
		return user.Phone
	}
	return "01012345678"
}
