// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Payment gateway credentials
	MerchantLogin     string
	MerchantPassword1 string // signs outbound invoice parameters
	MerchantPassword2 string // verifies inbound confirmation callbacks
	PaymentTestMode   bool   // forwarded to the gateway as IsTest

	// Tracing
	OTLPEndpoint string // OTLP gRPC endpoint; tracing disabled when empty

	// Limits
	RateLimitRPM int
}

const (
	DefaultPort      = "8080"
	DefaultEnv       = "development"
	DefaultLogLevel  = "info"
	DefaultRateLimit = 120
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", DefaultPort),
		Env:               getEnv("ENV", DefaultEnv),
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:       os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		MerchantLogin:     os.Getenv("MERCHANT_LOGIN"),
		MerchantPassword1: os.Getenv("MERCHANT_PASSWORD_1"),
		MerchantPassword2: os.Getenv("MERCHANT_PASSWORD_2"),
		PaymentTestMode:   getEnvBool("PAYMENT_TEST_MODE", false),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPM:      int(getEnvInt64("RATE_LIMIT_RPM", int64(DefaultRateLimit))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.MerchantLogin == "" {
		return fmt.Errorf("MERCHANT_LOGIN is required")
	}
	if c.MerchantPassword1 == "" {
		return fmt.Errorf("MERCHANT_PASSWORD_1 is required")
	}
	if c.MerchantPassword2 == "" {
		return fmt.Errorf("MERCHANT_PASSWORD_2 is required")
	}
	// The gateway verifies the outbound leg with the first secret and signs
	// the confirmation leg with the second; sharing one defeats both checks.
	if c.MerchantPassword1 == c.MerchantPassword2 {
		return fmt.Errorf("MERCHANT_PASSWORD_1 and MERCHANT_PASSWORD_2 must differ")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
