package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amondhq/billing-service/internal/config"
	"github.com/amondhq/billing-service/internal/infrastructure/crypto"
	"github.com/amondhq/billing-service/internal/infrastructure/database"
	"github.com/amondhq/billing-service/internal/infrastructure/email"
	httpServer "github.com/amondhq/billing-service/internal/infrastructure/http"
	"github.com/amondhq/billing-service/internal/infrastructure/provider/inicis"
	"github.com/amondhq/billing-service/internal/scheduler"
	"github.com/amondhq/billing-service/internal/usecase"
	"github.com/amondhq/billing-service/pkg/logger"
	"github.com/amondhq/billing-service/pkg/messaging"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
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

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Billing-key cipher
	keyCipher, err := crypto.NewKeyCipher(cfg.Service.BillingKeyCipherKey)
	if err != nil {
		zapLogger.Fatal("Failed to initialize billing key cipher", zap.Error(err))
	}

	// Payment gateway
	gateway := inicis.NewInicisProvider(cfg.Inicis, zapLogger)

	// Billing event publisher (optional)
	var events messaging.Publisher
	if cfg.Redis.Enabled {
		events, err = messaging.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer events.Close()
	}

	// Usecases
	billingService, err := usecase.NewBillingService(
		repos.Subscription,
		repos.PaymentLog,
		repos.Membership,
		gateway,
		keyCipher,
		events,
		cfg.Redis.Channel,
		cfg.Billing,
		zapLogger,
	)
	if err != nil {
		zapLogger.Fatal("Failed to initialize billing service", zap.Error(err))
	}

	reconcileService := usecase.NewReconcileService(
		repos.Subscription,
		repos.Membership,
		cfg.Billing.FailureWindow,
		zapLogger,
	)

	var notificationService *usecase.NotificationService
	if cfg.Email.Enabled {
		sender := email.NewEmailJSClient(cfg.Email, zapLogger)
		notificationService = usecase.NewNotificationService(
			repos.EmailNotification,
			sender,
			cfg.Billing.BatchLimit,
			zapLogger,
		)
	}

	// Scheduler
	sched := scheduler.New(billingService, reconcileService, notificationService, cfg.Scheduler, zapLogger)
	if err := sched.Start(); err != nil {
		zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP server
	httpSrv := httpServer.NewServer(cfg.Server, billingService, reconcileService, repos.PaymentLog, zapLogger)
	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	zapLogger.Info("billing service started",
		zap.String("service", cfg.Service.Name),
		zap.String("environment", cfg.Service.Environment),
		zap.String("version", cfg.Service.Version))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Shutdown complete")
}
