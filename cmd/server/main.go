// Package main is the entry point for the compliance risk engine API.
// It loads configuration, initializes storage, wires the services and
// starts the HTTP and metrics listeners.
package main

import (
	"strconv"
	"time"

	"aegis/internal/config"
	"aegis/internal/metrics"
	"aegis/internal/repositories"
	"aegis/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := repositories.InitDB(); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		logger.Fatal("failed to get database instance", zap.Error(err))
	}

	maxIdleConns, _ := strconv.Atoi(config.GetEnv("DB_MAX_IDLE_CONNS", "10"))
	maxOpenConns, _ := strconv.Atoi(config.GetEnv("DB_MAX_OPEN_CONNS", "100"))
	connMaxLifetime := config.GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour)
	connMaxIdleTime := config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute)

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database connection", zap.Error(err))
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				logger.Warn("failed to close redis connection", zap.Error(err))
			}
		}
	}()

	complianceMetrics := metrics.NewComplianceMetrics(logger)
	go func() {
		addr := config.GetEnv("METRICS_ADDR", ":9091")
		if err := complianceMetrics.Serve(addr); err != nil {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("RATE_LIMIT", 100),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, repositories.DB, logger, routes.Collectors{
		Screening:  complianceMetrics,
		Monitoring: complianceMetrics,
		KYC:        complianceMetrics,
	})

	logger.Fatal("server stopped", zap.Error(app.Listen(":"+config.GetEnv("PORT", "3000"))))
}

func newLogger() (*zap.Logger, error) {
	if config.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
