package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/amondhq/billing-service/internal/config"
	"github.com/amondhq/billing-service/internal/infrastructure/crypto"
	"github.com/amondhq/billing-service/internal/infrastructure/database"
	"github.com/amondhq/billing-service/internal/infrastructure/email"
	"github.com/amondhq/billing-service/internal/infrastructure/provider/inicis"
	"github.com/amondhq/billing-service/internal/usecase"
	"github.com/amondhq/billing-service/pkg/logger"
	"go.uber.org/zap"
)

// runpass executes one pass and exits. Intended for operational
// intervention and local testing; the long-running server schedules the
// same passes itself.
func main() {
	var (
		pass    = flag.String("pass", "billing", "which pass to run: billing, reconcile or email")
		timeout = flag.Duration("timeout", 10*time.Minute, "pass deadline")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db, zapLogger)

	repos := database.NewRepositories(db, zapLogger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *pass {
	case "billing":
		keyCipher, err := crypto.NewKeyCipher(cfg.Service.BillingKeyCipherKey)
		if err != nil {
			zapLogger.Fatal("Failed to initialize billing key cipher", zap.Error(err))
		}
		gateway := inicis.NewInicisProvider(cfg.Inicis, zapLogger)

		billingService, err := usecase.NewBillingService(
			repos.Subscription,
			repos.PaymentLog,
			repos.Membership,
			gateway,
			keyCipher,
			nil,
			"",
			cfg.Billing,
			zapLogger,
		)
		if err != nil {
			zapLogger.Fatal("Failed to initialize billing service", zap.Error(err))
		}
		if err := billingService.RunBillingPass(ctx); err != nil {
			zapLogger.Fatal("Billing pass failed", zap.Error(err))
		}

	case "reconcile":
		reconcileService := usecase.NewReconcileService(
			repos.Subscription,
			repos.Membership,
			cfg.Billing.FailureWindow,
			zapLogger,
		)
		if _, err := reconcileService.Run(ctx); err != nil {
			zapLogger.Fatal("Reconciliation pass failed", zap.Error(err))
		}

	case "email":
		if !cfg.Email.Enabled {
			zapLogger.Fatal("Email dispatch is disabled in configuration")
		}
		sender := email.NewEmailJSClient(cfg.Email, zapLogger)
		notificationService := usecase.NewNotificationService(
			repos.EmailNotification,
			sender,
			cfg.Billing.BatchLimit,
			zapLogger,
		)
		if err := notificationService.DispatchPending(ctx); err != nil {
			zapLogger.Fatal("Email dispatch failed", zap.Error(err))
		}

	default:
		zapLogger.Fatal("Unknown pass", zap.String("pass", *pass))
	}

	zapLogger.Info("Pass completed", zap.String("pass", *pass))
}
