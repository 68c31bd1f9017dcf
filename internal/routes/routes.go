// Package routes wires repositories, services and handlers onto the
// fiber app. All construction happens here so tests can build services
// with isolated fakes instead of shared globals.
package routes

import (
	"aegis/internal/config"
	"aegis/internal/handlers"
	"aegis/internal/middleware"
	"aegis/internal/repositories"
	"aegis/internal/services/kyc"
	"aegis/internal/services/monitoring"
	"aegis/internal/services/notification"
	"aegis/internal/services/review"
	"aegis/internal/services/screening"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Collectors groups the per-service metrics hooks so main can pass one
// prometheus-backed implementation for all of them.
type Collectors struct {
	Screening  screening.MetricsCollector
	Monitoring monitoring.MetricsCollector
	KYC        kyc.MetricsCollector
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, logger *zap.Logger, collectors Collectors) {
	// Repositories
	screeningRepo := repositories.NewScreeningRepository(db)
	monitoringRepo := repositories.NewMonitoringRepository(db)
	kycRepo := repositories.NewKYCRepository(db)
	userRepo := repositories.NewUserRepository(db)
	signals := repositories.NewSignalRepository(db, repositories.CacheService,
		config.GetDurationEnv("SIGNAL_CACHE_TTL", 0))

	// Compliance alerts go through redis when the cache is up.
	var sink notification.Sink = notification.NewLogSink(logger)
	if repositories.CacheService != nil {
		sink = notification.NewRedisSink(
			repositories.CacheService.Client(),
			config.GetEnv("ALERT_CHANNEL", "compliance.alerts"),
			logger,
		)
	}

	ruleTimeout := config.GetDurationEnv("RULE_TIMEOUT", 0)
	ruleParallelism := config.GetIntEnv("RULE_PARALLELISM", 0)

	screeningService := screening.NewService(
		screeningRepo,
		userRepo,
		signals,
		sink,
		screening.Config{
			ReviewThreshold: config.GetIntEnv("REVIEW_THRESHOLD", 70),
			RuleTimeout:     ruleTimeout,
			RuleParallelism: ruleParallelism,
		},
		logger,
		collectors.Screening,
	)

	monitoringService := monitoring.NewService(
		monitoringRepo,
		monitoring.DefaultRules(signals),
		monitoring.Config{
			RuleTimeout:     ruleTimeout,
			RuleParallelism: ruleParallelism,
		},
		logger,
		collectors.Monitoring,
	)

	kycService := kyc.NewService(
		kycRepo,
		kyc.NewStubProvider(),
		kyc.Config{
			PassThreshold: config.GetIntEnv("KYC_PASS_THRESHOLD", 70),
			CheckTimeout:  config.GetDurationEnv("KYC_CHECK_TIMEOUT", 0),
		},
		logger,
		collectors.KYC,
	)

	reviewService := review.NewService(screeningRepo, monitoringRepo, kycRepo, logger)

	complianceHandler := handlers.NewComplianceHandler(screeningService, monitoringService)
	kycHandler := handlers.NewKYCHandler(kycService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api", middleware.Auth)

	compliance := api.Group("/compliance")
	compliance.Post("/screen", complianceHandler.ScreenTransaction)
	compliance.Post("/monitor", complianceHandler.MonitorTransaction)
	compliance.Get("/status", complianceHandler.GetScreeningStatus)

	kycRoutes := api.Group("/kyc")
	kycRoutes.Post("/", kycHandler.SubmitKYC)
	kycRoutes.Get("/status", kycHandler.GetStatus)

	admin := api.Group("/admin", middleware.RequireReviewer)
	admin.Get("/reviews/screenings", complianceHandler.GetPendingScreenings)
	admin.Get("/reviews/monitoring", complianceHandler.GetPendingMonitoring)
	admin.Get("/reviews/kyc", kycHandler.GetPendingReviews)
	admin.Post("/reviews/:kind/:id", reviewHandler.SubmitReview)
	admin.Get("/report", complianceHandler.GenerateReport)
}
