package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amondhq/billing-service/internal/config"
	"github.com/amondhq/billing-service/internal/domain/model"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	"github.com/amondhq/billing-service/internal/usecase"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// In-memory stubs: the handlers are under test, not the persistence layer.

type stubSubscriptionRepo struct{}

func (s *stubSubscriptionRepo) DueSubscriptions(ctx context.Context, now time.Time, limit int) ([]*domainRepo.DueSubscription, error) {
	return nil, nil
}
func (s *stubSubscriptionRepo) AdvanceBillingDate(ctx context.Context, subscriptionID int64, next time.Time) error {
	return nil
}
func (s *stubSubscriptionRepo) Suspend(ctx context.Context, subscriptionID int64, at time.Time) error {
	return nil
}
func (s *stubSubscriptionRepo) ExpireCancelled(ctx context.Context, now time.Time) (int64, error) {
	return 2, nil
}
func (s *stubSubscriptionRepo) ExpireSuspended(ctx context.Context, cutoff time.Time) (int64, error) {
	return 1, nil
}

type stubPaymentLogRepo struct {
	logs    []model.PaymentLog
	listErr error
}

func (s *stubPaymentLogRepo) RecordAttempt(ctx context.Context, entry *model.PaymentLog) error {
	return nil
}
func (s *stubPaymentLogRepo) RecentFailureCount(ctx context.Context, userID int64, since time.Time) (int64, error) {
	return 0, nil
}
func (s *stubPaymentLogRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.PaymentLog, error) {
	return s.logs, s.listErr
}

type stubMembershipRepo struct{}

func (s *stubMembershipRepo) ExtendMembership(ctx context.Context, userID int64, newEndDate time.Time) error {
	return nil
}
func (s *stubMembershipRepo) ExpireMembership(ctx context.Context, userID int64) error {
	return nil
}
func (s *stubMembershipRepo) ExpireOverdueMemberships(ctx context.Context, now time.Time) (int64, error) {
	return 3, nil
}

type stubCipher struct{}

func (s *stubCipher) Seal(plaintext string) (string, error) { return plaintext, nil }
func (s *stubCipher) Open(sealed string) (string, error)    { return sealed, nil }

func newTestServer(t *testing.T, adminToken string, logs *stubPaymentLogRepo) *Server {
	t.Helper()

	cfg := config.BillingConfig{
		BatchLimit:       10,
		FailureThreshold: 3,
		FailureWindow:    time.Hour,
		PeriodMonths:     1,
		PlanPrices:       map[string]string{"pro": "9900"},
	}

	billing, err := usecase.NewBillingService(
		&stubSubscriptionRepo{}, logs, &stubMembershipRepo{},
		nil, &stubCipher{}, nil, "", cfg, zap.NewNop())
	require.NoError(t, err)

	recon := usecase.NewReconcileService(&stubSubscriptionRepo{}, &stubMembershipRepo{}, time.Hour, zap.NewNop())

	return NewServer(config.ServerConfig{
		HTTP:       config.HTTPConfig{Host: "127.0.0.1", Port: 0},
		AdminToken: adminToken,
	}, billing, recon, logs, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, "secret", &stubPaymentLogRepo{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["billing_running"])
}

func TestAdminTokenGuard(t *testing.T) {
	t.Run("rejects a missing token", func(t *testing.T) {
		server := newTestServer(t, "secret", &stubPaymentLogRepo{})

		req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a wrong token", func(t *testing.T) {
		server := newTestServer(t, "secret", &stubPaymentLogRepo{})

		req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("internal routes are absent without a configured token", func(t *testing.T) {
		server := newTestServer(t, "", &stubPaymentLogRepo{})

		req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRunEndpoints(t *testing.T) {
	t.Run("billing run completes", func(t *testing.T) {
		server := newTestServer(t, "secret", &stubPaymentLogRepo{})

		req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reconcile run reports counts", func(t *testing.T) {
		server := newTestServer(t, "secret", &stubPaymentLogRepo{})

		req := httptest.NewRequest(http.MethodPost, "/internal/reconcile/run", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var result usecase.ReconcileResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, int64(3), result.OverdueMemberships)
		assert.Equal(t, int64(2), result.CancelledToExpired)
		assert.Equal(t, int64(1), result.AbandonedSuspensions)
	})
}

func TestListPaymentLogs(t *testing.T) {
	logs := &stubPaymentLogRepo{logs: []model.PaymentLog{
		{ID: 1, UserID: 7, OrderNumber: "ord-1", Price: decimal.NewFromInt(9900)},
	}}

	t.Run("returns the user's attempts", func(t *testing.T) {
		server := newTestServer(t, "secret", logs)

		req := httptest.NewRequest(http.MethodGet, "/internal/billing/logs?user_id=7", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ord-1")
	})

	t.Run("requires user_id", func(t *testing.T) {
		server := newTestServer(t, "secret", logs)

		req := httptest.NewRequest(http.MethodGet, "/internal/billing/logs", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps coded storage errors to their status", func(t *testing.T) {
		failing := &stubPaymentLogRepo{
			listErr: pkgErrors.NewAppError(pkgErrors.ErrUnavailable, "storage unavailable", nil),
		}
		server := newTestServer(t, "secret", failing)

		req := httptest.NewRequest(http.MethodGet, "/internal/billing/logs?user_id=7", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("uncoded storage errors land on 500", func(t *testing.T) {
		failing := &stubPaymentLogRepo{listErr: errors.New("driver: bad connection")}
		server := newTestServer(t, "secret", failing)

		req := httptest.NewRequest(http.MethodGet, "/internal/billing/logs?user_id=7", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("bounds the limit", func(t *testing.T) {
		server := newTestServer(t, "secret", logs)

		req := httptest.NewRequest(http.MethodGet, "/internal/billing/logs?user_id=7&limit=1000", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
