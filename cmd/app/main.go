package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fulfillment/cmd"
	"fulfillment/internal/adapters/out/postgres/deliveryrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := loadConfig(logger)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}

	if err = db.AutoMigrate(&deliveryrepo.DeliveryDTO{}, &orderrepo.OrderDTO{}); err != nil {
		logger.Error("migrate schema", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(cfg, db, logger)
	if err != nil {
		logger.Error("build composition root", "error", err)
		os.Exit(1)
	}

	registerWebhook(root, cfg, logger)

	jobManager, err := root.CreateJobManager()
	if err != nil {
		logger.Error("build jobs", "error", err)
		os.Exit(1)
	}
	if err = jobManager.StartAll(); err != nil {
		logger.Error("start jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	server, err := root.CreateServer()
	if err != nil {
		logger.Error("build http server", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	server.RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
}

// registerWebhook tells the courier where to push status updates. Failure is
// logged rather than fatal: the reconciliation poller covers for missing
// webhooks.
func registerWebhook(root *cmd.CompositionRoot, cfg cmd.Config, logger *slog.Logger) {
	if cfg.WebhookURL == "" {
		logger.Warn("no webhook URL configured, relying on polling only")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := root.Courier().SetWebhookURL(ctx, cfg.WebhookURL); err != nil {
		logger.Warn("courier webhook registration failed, relying on polling", "error", err)
	}
}

func loadConfig(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("no .env file, reading environment directly")
	}

	return cmd.Config{
		HTTPPort: envOr("HTTP_PORT", "8080"),

		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: envOr("DB_PASSWORD", "postgres"),
		DBName:     envOr("DB_NAME", "fulfillment"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		LalamoveBaseURL:   envOr("LALAMOVE_BASE_URL", "https://rest.sandbox.lalamove.com"),
		LalamoveAPIKey:    os.Getenv("LALAMOVE_API_KEY"),
		LalamoveAPISecret: os.Getenv("LALAMOVE_API_SECRET"),
		LalamoveMarket:    envOr("LALAMOVE_MARKET", "PH"),
		WebhookURL:        os.Getenv("LALAMOVE_WEBHOOK_URL"),

		GeocoderBaseURL:     envOr("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent:   envOr("GEOCODER_USER_AGENT", "fulfillment-service"),
		GeocoderCacheTTL:    envDuration(logger, "GEOCODER_CACHE_TTL", 0),
		GeocoderMinInterval: envDuration(logger, "GEOCODER_MIN_INTERVAL", 0),
		RedisAddr:           os.Getenv("REDIS_ADDR"),

		KafkaBrokers:           strings.Split(envOr("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaNotificationTopic: envOr("KAFKA_NOTIFICATION_TOPIC", "delivery-notifications"),

		FreeShippingThreshold: envFloat(logger, "FREE_SHIPPING_THRESHOLD", 2000),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(logger *slog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("unparseable duration, using default", "key", key, "value", v)
		return fallback
	}
	return d
}

func envFloat(logger *slog.Logger, key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("unparseable number, using default", "key", key, "value", v)
		return fallback
	}
	return f
}
