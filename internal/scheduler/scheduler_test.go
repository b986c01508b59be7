package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amondhq/billing-service/internal/config"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	"github.com/amondhq/billing-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSchedulerStart(t *testing.T) {
	t.Run("accepts valid cron specs", func(t *testing.T) {
		s := New(nil, nil, nil, config.SchedulerConfig{
			BillingSpec:   "*/10 * * * *",
			ReconcileSpec: "0 4 * * *",
			EmailSpec:     "* * * * *",
		}, zap.NewNop())

		require.NoError(t, s.Start())
		s.Stop()
	})

	t.Run("rejects a malformed billing spec", func(t *testing.T) {
		s := New(nil, nil, nil, config.SchedulerConfig{
			BillingSpec:   "not a cron spec",
			ReconcileSpec: "0 4 * * *",
			EmailSpec:     "* * * * *",
		}, zap.NewNop())

		assert.Error(t, s.Start())
	})

	t.Run("skips the email job when no mailer is configured", func(t *testing.T) {
		s := New(nil, nil, nil, config.SchedulerConfig{
			BillingSpec:   "*/10 * * * *",
			ReconcileSpec: "0 4 * * *",
			EmailSpec:     "also not a cron spec",
		}, zap.NewNop())

		// the invalid email spec is never registered without a mailer
		require.NoError(t, s.Start())
		s.Stop()
	})
}

// blockingSubscriptionRepo holds the due-subscription query open until
// released, so a second pass can be fired while the first is in flight.
type blockingSubscriptionRepo struct {
	started chan struct{}
	release chan struct{}
}

func (r *blockingSubscriptionRepo) DueSubscriptions(ctx context.Context, now time.Time, limit int) ([]*domainRepo.DueSubscription, error) {
	close(r.started)
	<-r.release
	return nil, nil
}

func (r *blockingSubscriptionRepo) AdvanceBillingDate(ctx context.Context, subscriptionID int64, next time.Time) error {
	return nil
}

func (r *blockingSubscriptionRepo) Suspend(ctx context.Context, subscriptionID int64, at time.Time) error {
	return nil
}

func (r *blockingSubscriptionRepo) ExpireCancelled(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (r *blockingSubscriptionRepo) ExpireSuspended(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestRunBilling(t *testing.T) {
	t.Run("an overlapping billing pass is skipped without an error log", func(t *testing.T) {
		repo := &blockingSubscriptionRepo{
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		billing, err := usecase.NewBillingService(repo, nil, nil, nil, nil, nil, "", config.BillingConfig{
			BatchLimit:       10,
			FailureThreshold: 3,
			FailureWindow:    time.Hour,
			PeriodMonths:     1,
		}, zap.NewNop())
		require.NoError(t, err)

		core, logs := observer.New(zapcore.ErrorLevel)
		s := New(billing, nil, nil, config.SchedulerConfig{}, zap.New(core))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runBilling()
		}()
		<-repo.started

		// fires while the first pass still holds the guard
		s.runBilling()

		close(repo.release)
		wg.Wait()
		assert.Zero(t, logs.Len(), "skipped pass must not be logged as a failure")
	})
}
