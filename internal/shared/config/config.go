package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the service reads from the environment.
// A .env file is loaded if present so local runs don't need exported vars.
type Config struct {
	Addr       string
	AppURL     string
	JWTSecret  string
	CronSecret string

	// bid rate limiting, soft abuse guard per actor
	BidRateMax    int
	BidRateWindow time.Duration

	SMTP SMTPConfig
}

// SMTPConfig carries outbound mail settings. When Host is empty the service
// falls back to a log-only mailer, useful for local development.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Load reads the environment (and optional .env) into a Config.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:          ":" + envOr("PORT", "9000"),
		AppURL:        envOr("APP_URL", "http://localhost:9000"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CronSecret:    os.Getenv("CRON_SECRET"),
		BidRateMax:    envOrInt("BID_RATE_MAX", 20),
		BidRateWindow: time.Duration(envOrInt("BID_RATE_WINDOW_SECONDS", 60)) * time.Second,
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envOrInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOr("SMTP_FROM", "noreply@atelier.com"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
