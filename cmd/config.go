package cmd

import (
	"fmt"
	"time"
)

// Config carries every runtime setting of the service, loaded from the
// environment by cmd/app.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	LalamoveBaseURL   string
	LalamoveAPIKey    string
	LalamoveAPISecret string
	LalamoveMarket    string
	// WebhookURL is the public URL of the courier webhook endpoint,
	// registered with the courier at startup. Empty skips registration.
	WebhookURL string

	GeocoderBaseURL     string
	GeocoderUserAgent   string
	GeocoderCacheTTL    time.Duration
	GeocoderMinInterval time.Duration
	// RedisAddr switches the geocode cache from in-process memory to Redis
	// when set, so replicas share resolutions.
	RedisAddr string

	KafkaBrokers           []string
	KafkaNotificationTopic string

	FreeShippingThreshold float64
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
