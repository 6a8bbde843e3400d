package app

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	// =========================== REQUIRED ===========================

	// Database configuration (required)
	DSN *string

	// =========================== OPTIONAL ===========================

	// Redis configuration, rate limiting falls back to in-process counters when empty
	RedisAddr *string

	// Logging configuration
	LogLevel *string

	// Runtime environment: dev, staging or production
	Environment *string

	// HTTP server configuration
	Port *string
	Host *string

	// CORS configuration
	AllowOrigins *[]string

	// Migration configuration
	MigrationPath *string

	// OTP configuration
	OTPTTL           *time.Duration
	OTPSingleUse     *bool
	OTPRateLimit     *int64
	OTPRateWindow    *time.Duration
	OTPRetention     *time.Duration
	PurgeSchedule    *string
	RunPurgeInServer *bool

	// SMS configuration, test mode when Twilio credentials are missing
	TwilioAccountSID *string
	TwilioAuthToken  *string
	TwilioFrom       *string
	SMSCountryCode   *string
	SMSTimeout       *time.Duration
	AllowTestMode    *bool
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{}

	// Load required configuration
	loadRequiredConfig(config)

	// Load optional configuration with defaults
	loadOptionalConfig(config)

	return config
}

// IsProduction reports whether the service runs with production guards.
func (c *AppConfig) IsProduction() bool {
	return c.Environment != nil && (*c.Environment == "production" || *c.Environment == "prod")
}

// loadRequiredConfig loads all required configuration values and fails fast if any are missing
func loadRequiredConfig(config *AppConfig) {
	// Database URL (required)
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatalf("REQUIRED: DB_URL not set in environment")
	}
	config.DSN = &dsn

	// CORS origins (required in production, optional in development)
	loadCORSConfig(config)
}

// loadOptionalConfig loads all optional configuration values with sensible defaults
func loadOptionalConfig(config *AppConfig) {
	environment := getEnvWithDefault("ENVIRONMENT", "dev")
	config.Environment = &environment

	redisAddr := os.Getenv("REDIS_URL")
	config.RedisAddr = &redisAddr

	// HTTP server port (default: 8080)
	port := getEnvWithDefault("PORT", "8080")
	config.Port = &port

	host := getEnvWithDefault("HOST", "localhost:"+port)
	config.Host = &host

	// Log level (default: debug)
	// Available levels: "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"
	logLevel := getEnvWithDefault("LOG_LEVEL", "debug")
	config.LogLevel = &logLevel

	// Migration path (default: file://migrations)
	migrationPath := getEnvWithDefault("MIGRATION_PATH", "file://migrations")
	config.MigrationPath = &migrationPath

	loadOTPConfig(config)
	loadSMSConfig(config)
}

// loadCORSConfig handles CORS origins configuration with environment-specific behavior
func loadCORSConfig(config *AppConfig) {
	allowOrigins := splitList(os.Getenv("ALLOW_ORIGINS"))

	if len(allowOrigins) == 0 {
		// Handle missing ALLOW_ORIGINS based on environment
		environment := getEnvWithDefault("ENVIRONMENT", "dev")
		if environment == "development" || environment == "dev" {
			// Default to localhost in development
			allowOrigins = []string{"http://localhost:5173"}
		} else {
			log.Fatalf("REQUIRED: ALLOW_ORIGINS not set in environment (required in production)")
		}
	}

	config.AllowOrigins = &allowOrigins
}

func loadOTPConfig(config *AppConfig) {
	ttl := getDurationWithDefault("OTP_TTL", 5*time.Minute)
	config.OTPTTL = &ttl

	singleUse := getBoolWithDefault("OTP_SINGLE_USE", true)
	config.OTPSingleUse = &singleUse

	rateLimit := getInt64WithDefault("OTP_RATE_LIMIT", 5)
	config.OTPRateLimit = &rateLimit

	rateWindow := getDurationWithDefault("OTP_RATE_WINDOW", 15*time.Minute)
	config.OTPRateWindow = &rateWindow

	retention := getDurationWithDefault("OTP_RETENTION", 24*time.Hour)
	config.OTPRetention = &retention

	schedule := getEnvWithDefault("PURGE_SCHEDULE", "@hourly")
	config.PurgeSchedule = &schedule

	runPurge := getBoolWithDefault("RUN_PURGE_IN_SERVER", false)
	config.RunPurgeInServer = &runPurge
}

func loadSMSConfig(config *AppConfig) {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	config.TwilioAccountSID = &sid

	token := os.Getenv("TWILIO_AUTH_TOKEN")
	config.TwilioAuthToken = &token

	from := os.Getenv("TWILIO_FROM")
	config.TwilioFrom = &from

	countryCode := getEnvWithDefault("SMS_COUNTRY_CODE", "+91")
	config.SMSCountryCode = &countryCode

	timeout := getDurationWithDefault("SMS_TIMEOUT", 15*time.Second)
	config.SMSTimeout = &timeout

	allowTestMode := getBoolWithDefault("ALLOW_TEST_MODE", false)
	config.AllowTestMode = &allowTestMode
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	log.Printf("Warning: Invalid %s value '%s', using default %s", key, value, defaultValue)
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	log.Printf("Warning: Invalid %s value '%s', using default %t", key, value, defaultValue)
	return defaultValue
}

func getInt64WithDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
		return parsed
	}
	log.Printf("Warning: Invalid %s value '%s', using default %d", key, value, defaultValue)
	return defaultValue
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
