// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stopfakeai/detection-api/internal/detection"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Idle shutdown for scale-to-zero hosting. 0 disables.
	IdleTimeout time.Duration

	// Database
	DatabaseURL string

	// Authentication
	JWTSecret string
	JWTExpiry time.Duration

	// Vendor detection APIs. An empty key disables that vendor; text
	// detection then runs in heuristic-only mode and media endpoints
	// serve demo results.
	GPTZeroAPIKey  string
	HiveAPIKey     string
	ResembleAPIKey string

	// Vendor call behavior
	DetectorTimeout    time.Duration
	DetectorMaxRetries int
	DetectorRetryDelay time.Duration

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceYearly   string
	StripePricePro      string

	// Result cache
	CacheSize int
	CacheTTL  time.Duration

	// Per-user detection rate limit window
	RateLimitWindow time.Duration
	RateLimitMax    int

	// Free tier daily quota
	FreeDailyChecks int

	// CORS
	CORSOrigins []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:stopfakeai.db?_journal=WAL&_timeout=5000"),

		IdleTimeout: getEnvDuration("IDLE_TIMEOUT", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		GPTZeroAPIKey:  getEnv("GPTZERO_API_KEY", ""),
		HiveAPIKey:     getEnv("HIVE_API_KEY", ""),
		ResembleAPIKey: getEnv("RESEMBLE_API_KEY", ""),

		DetectorTimeout:    getEnvDuration("DETECTOR_TIMEOUT", 45*time.Second),
		DetectorMaxRetries: getEnvInt("DETECTOR_MAX_RETRIES", 2),
		DetectorRetryDelay: getEnvDuration("DETECTOR_RETRY_DELAY", time.Second),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceYearly:   getEnv("STRIPE_PRICE_YEARLY", ""),
		StripePricePro:      getEnv("STRIPE_PRICE_PRO", ""),

		CacheSize: getEnvInt("CACHE_SIZE", detection.DefaultCacheSize),
		CacheTTL:  getEnvDuration("CACHE_TTL", detection.DefaultCacheTTL),

		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 0), // 0 = use tier limits

		FreeDailyChecks: getEnvInt("FREE_DAILY_CHECKS", 3),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// LiveTextDetection returns true if the GPTZero vendor is configured.
func (c *Config) LiveTextDetection() bool {
	return c.GPTZeroAPIKey != ""
}

// BillingEnabled returns true if Stripe is configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
