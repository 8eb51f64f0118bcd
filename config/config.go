package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration, loaded from environment
// variables with sensible defaults.
type Config struct {
	Port           string
	Host           string
	DatabaseURL    string
	AllowedOrigins string

	ScanCron string // cron spec for the scheduled full scan

	CacheDBPath string
	CacheTTL    time.Duration

	RateLimit float64 // API requests per second per client

	DiscountAlertThreshold float64
	VarianceAlertThreshold float64
	MaxAlerts              int

	TargetVariance float64 // forecast margin above predicted competitor price
	BackfillDays   int

	TelegramBotToken string
	TelegramChatID   int64

	MarketplacesFile string // optional YAML override of marketplace configs
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Host:           getEnv("HOST", "0.0.0.0"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		// Every 12 hours, at 00:00 and 12:00 (cron spec with seconds).
		ScanCron: getEnv("SCAN_CRON", "0 0 */12 * * *"),

		CacheDBPath: getEnv("CACHE_DB_PATH", "./scan-cache.db"),
		CacheTTL:    getEnvDuration("CACHE_TTL", 30*time.Minute),

		RateLimit: getEnvFloat("RATE_LIMIT_RPS", 5),

		DiscountAlertThreshold: getEnvFloat("DISCOUNT_ALERT_THRESHOLD", 15),
		VarianceAlertThreshold: getEnvFloat("VARIANCE_ALERT_THRESHOLD", 10),
		MaxAlerts:              getEnvInt("MAX_ALERTS", 10),

		TargetVariance: getEnvFloat("FORECAST_TARGET_VARIANCE", 0.05),
		BackfillDays:   getEnvInt("BACKFILL_DAYS", 7),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnvInt64("TELEGRAM_CHAT_ID", 0),

		MarketplacesFile: getEnv("MARKETPLACES_FILE", ""),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
