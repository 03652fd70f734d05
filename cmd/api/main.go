package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rangemedical/clinic-ops/internal/api/router"
	appconfig "github.com/rangemedical/clinic-ops/internal/config"
	"github.com/rangemedical/clinic-ops/internal/messaging"
	"github.com/rangemedical/clinic-ops/internal/messaging/compliance"
	"github.com/rangemedical/clinic-ops/internal/messaging/ghlclient"
	"github.com/rangemedical/clinic-ops/internal/notify"
	"github.com/rangemedical/clinic-ops/internal/observability/metrics"
	"github.com/rangemedical/clinic-ops/internal/patients"
	"github.com/rangemedical/clinic-ops/internal/portal"
	"github.com/rangemedical/clinic-ops/internal/pos"
	"github.com/rangemedical/clinic-ops/internal/protocols"
	"github.com/rangemedical/clinic-ops/internal/purchases"
	reminderworker "github.com/rangemedical/clinic-ops/internal/worker/reminder"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-ops API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open db failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping db failed", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, portal cache disabled", "error", err)
			redisClient = nil
		}
	}

	trackerMetrics := metrics.NewTrackerMetrics(nil)

	// Repositories
	patientsRepo := patients.NewRepository(db)
	protocolsRepo := protocols.NewRepository(db)
	purchasesRepo := purchases.NewRepository(db)
	messagesRepo := messaging.NewRepository(db)
	servicesRepo := pos.NewRepository(db)

	// Portal read model with Redis cache
	portalCache := portal.NewCache(redisClient, cfg.PortalCacheTTL, logger.Component("portal_cache"))
	portalService := portal.NewService(patientsRepo, protocolsRepo, purchasesRepo, portalCache, logger)
	portalHandler := portal.NewHandler(portalService, trackerMetrics, logger)

	trackerHandler := protocols.NewTrackerHandler(protocolsRepo, portalCache, trackerMetrics, logger)

	// Purchase receipts by email
	var emailSender notify.EmailSender
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("load aws config failed", "error", err)
			os.Exit(1)
		}
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			emailSender = notify.NewSendGridSender(notify.SendGridConfig{
				APIKey:    cfg.SendGridAPIKey,
				FromEmail: cfg.SendGridFromEmail,
				FromName:  cfg.SendGridFromName,
			}, logger)
		}
	}
	if emailSender == nil {
		logger.Warn("no email provider configured, receipts will be logged only")
		emailSender = notify.NewStubEmailSender(logger)
	}
	receipts := notify.NewReceiptService(emailSender, logger)

	purchasesHandler := purchases.NewHandler(purchasesRepo, patientsRepo, receipts, logger)

	// CRM messaging (optional: requires a GHL API key)
	var messagingHandler *messaging.Handler
	var messagingService *messaging.Service
	if cfg.GHLAPIKey != "" {
		crm, err := ghlclient.New(ghlclient.Config{
			BaseURL:    cfg.GHLBaseURL,
			APIKey:     cfg.GHLAPIKey,
			LocationID: cfg.GHLLocationID,
			Logger:     logger.Component("ghl").Logger,
		})
		if err != nil {
			logger.Error("ghl client init failed", "error", err)
			os.Exit(1)
		}
		quiet, err := compliance.ParseQuietHours(cfg.QuietHoursStart, cfg.QuietHoursEnd, cfg.ReminderTimezone)
		if err != nil {
			logger.Error("invalid quiet hours", "error", err)
			os.Exit(1)
		}
		messagingService = messaging.NewService(crm, messagesRepo, quiet, trackerMetrics, cfg.PublicBaseURL, logger)
		messagingHandler = messaging.NewHandler(messagingService, logger)
	} else {
		logger.Warn("GHL_API_KEY not set, sms messaging disabled")
	}

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		PatientsHandler:    patients.NewHandler(patientsRepo, logger),
		ProtocolsHandler:   protocols.NewHandler(protocolsRepo, logger),
		TrackerHandler:     trackerHandler,
		PurchasesHandler:   purchasesHandler,
		PortalHandler:      portalHandler,
		MessagingHandler:   messagingHandler,
		ServicesHandler:    pos.NewHandler(servicesRepo, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		PublicRateLimit:    5,
		PublicRateBurst:    20,
	}
	r := router.New(routerCfg)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if cfg.RemindersEnabled && messagingService != nil {
		loc, err := time.LoadLocation(cfg.ReminderTimezone)
		if err != nil {
			logger.Warn("invalid reminder timezone, using UTC", "tz", cfg.ReminderTimezone)
			loc = time.UTC
		}
		w := reminderworker.New(protocolsRepo, patientsRepo, messagingService, trackerMetrics, logger.Component("reminders")).
			WithInterval(cfg.ReminderInterval).
			WithBatchSize(cfg.ReminderBatchSize).
			WithSendHour(cfg.ReminderSendHour).
			WithLocation(loc)
		go w.Run(workerCtx)
		logger.Info("dosing reminder worker started",
			"interval", cfg.ReminderInterval,
			"send_hour", cfg.ReminderSendHour,
			"tz", cfg.ReminderTimezone,
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorker()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
