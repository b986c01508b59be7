package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/amondhq/billing-service/internal/config"
	domainErrors "github.com/amondhq/billing-service/internal/domain/errors"
	"github.com/amondhq/billing-service/internal/usecase"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives the periodic passes: billing, reconciliation and
// email dispatch. Each job runs in cron's own goroutine; overlap
// protection lives inside the usecases themselves, so a slow pass is
// skipped rather than stacked.
type Scheduler struct {
	cron    *cron.Cron
	billing *usecase.BillingService
	recon   *usecase.ReconcileService
	mailer  *usecase.NotificationService
	cfg     config.SchedulerConfig
	logger  *zap.Logger
}

func New(
	billing *usecase.BillingService,
	recon *usecase.ReconcileService,
	mailer *usecase.NotificationService,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		billing: billing,
		recon:   recon,
		mailer:  mailer,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.BillingSpec, s.runBilling); err != nil {
		return fmt.Errorf("invalid billing schedule %q: %w", s.cfg.BillingSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.ReconcileSpec, s.runReconcile); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", s.cfg.ReconcileSpec, err)
	}
	if s.mailer != nil {
		if _, err := s.cron.AddFunc(s.cfg.EmailSpec, s.runEmailDispatch); err != nil {
			return fmt.Errorf("invalid email schedule %q: %w", s.cfg.EmailSpec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("billing_spec", s.cfg.BillingSpec),
		zap.String("reconcile_spec", s.cfg.ReconcileSpec),
		zap.String("email_spec", s.cfg.EmailSpec),
		zap.Bool("email_enabled", s.mailer != nil))
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runBilling() {
	if err := s.billing.RunBillingPass(context.Background()); err != nil {
		if errors.Is(err, domainErrors.ErrPassInProgress) {
			return
		}
		s.logger.Error("scheduled billing pass failed", zap.Error(err))
	}
}

func (s *Scheduler) runReconcile() {
	if _, err := s.recon.Run(context.Background()); err != nil {
		s.logger.Error("scheduled reconciliation failed", zap.Error(err))
	}
}

func (s *Scheduler) runEmailDispatch() {
	if err := s.mailer.DispatchPending(context.Background()); err != nil {
		if errors.Is(err, domainErrors.ErrPassInProgress) {
			return
		}
		s.logger.Error("scheduled email dispatch failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron's logger interface for panic recovery
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
