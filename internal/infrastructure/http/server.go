package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/amondhq/billing-service/internal/config"
	domainErrors "github.com/amondhq/billing-service/internal/domain/errors"
	domainRepo "github.com/amondhq/billing-service/internal/domain/repository"
	"github.com/amondhq/billing-service/internal/usecase"
	pkgErrors "github.com/amondhq/billing-service/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server exposes the operational surface: a health probe and
// token-guarded internal endpoints to trigger passes and inspect the
// payment audit log. There is no end-user API here.
type Server struct {
	echo    *echo.Echo
	cfg     config.ServerConfig
	billing *usecase.BillingService
	recon   *usecase.ReconcileService
	logs    domainRepo.PaymentLogRepository
	logger  *zap.Logger
}

func NewServer(
	cfg config.ServerConfig,
	billing *usecase.BillingService,
	recon *usecase.ReconcileService,
	logs domainRepo.PaymentLogRepository,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		cfg:     cfg,
		billing: billing,
		recon:   recon,
		logs:    logs,
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.health)

	if s.cfg.AdminToken == "" {
		s.logger.Warn("admin token not configured, internal endpoints disabled")
		return
	}

	internal := s.echo.Group("/internal", s.requireAdminToken)
	internal.POST("/billing/run", s.runBilling)
	internal.POST("/reconcile/run", s.runReconcile)
	internal.GET("/billing/logs", s.listPaymentLogs)
}

// Start runs the HTTP listener until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.HTTP.Host, s.cfg.HTTP.Port)
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requireAdminToken(next echo.HandlerFunc) echo.HandlerFunc {
	expected := "Bearer " + s.cfg.AdminToken
	return func(c echo.Context) error {
		got := c.Request().Header.Get(echo.HeaderAuthorization)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin token")
		}
		return next(c)
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"billing_running": s.billing.InProgress(),
	})
}

// runBilling triggers one billing pass synchronously. An in-flight pass
// answers 409 rather than queueing a second one.
func (s *Server) runBilling(c echo.Context) error {
	err := s.billing.RunBillingPass(c.Request().Context())
	if errors.Is(err, domainErrors.ErrPassInProgress) {
		return echo.NewHTTPError(http.StatusConflict, "billing pass already running")
	}
	if err != nil {
		s.logger.Error("manual billing pass failed", zap.Error(err))
		return echo.NewHTTPError(statusOf(err), "billing pass failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) runReconcile(c echo.Context) error {
	result, err := s.recon.Run(c.Request().Context())
	if err != nil {
		s.logger.Error("manual reconciliation failed", zap.Error(err))
		return echo.NewHTTPError(statusOf(err), "reconciliation failed")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) listPaymentLogs(c echo.Context) error {
	userID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
		}
		limit = parsed
	}

	logs, err := s.logs.ListByUser(c.Request().Context(), userID, limit)
	if err != nil {
		s.logger.Error("payment log lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return echo.NewHTTPError(statusOf(err), "payment log lookup failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"logs":    logs,
	})
}

// statusOf maps an error's application code to an HTTP status. Errors
// without a code land on 500.
func statusOf(err error) int {
	return pkgErrors.ToHTTPStatus(pkgErrors.CodeOf(err))
}
