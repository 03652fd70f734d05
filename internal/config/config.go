package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Redis cache for portal payloads
	RedisAddr      string
	RedisPassword  string
	PortalCacheTTL time.Duration

	// Admin API auth
	AdminJWTSecret string

	// CRM (GoHighLevel) messaging
	GHLAPIKey     string
	GHLLocationID string
	GHLBaseURL    string

	// Stripe product catalog seeding
	StripeSecretKey     string
	StripeSecretKeyTest string

	// Dosing reminder worker
	RemindersEnabled  bool
	ReminderSendHour  int
	ReminderTimezone  string
	ReminderInterval  time.Duration
	ReminderBatchSize int
	QuietHoursStart   string
	QuietHoursEnd     string

	// Email (receipts, protocol completion)
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AWSRegion         string

	CORSAllowedOrigins string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		PortalCacheTTL: getEnvAsDuration("PORTAL_CACHE_TTL", 2*time.Minute),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		GHLAPIKey:     getEnv("GHL_API_KEY", ""),
		GHLLocationID: getEnv("GHL_LOCATION_ID", ""),
		GHLBaseURL:    getEnv("GHL_BASE_URL", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeSecretKeyTest: getEnv("STRIPE_SECRET_KEY_TEST", ""),

		RemindersEnabled:  getEnvAsBool("REMINDERS_ENABLED", false),
		ReminderSendHour:  getEnvAsInt("REMINDER_SEND_HOUR", 9),
		ReminderTimezone:  getEnv("REMINDER_TZ", "America/Los_Angeles"),
		ReminderInterval:  getEnvAsDuration("REMINDER_INTERVAL", 15*time.Minute),
		ReminderBatchSize: getEnvAsInt("REMINDER_BATCH_SIZE", 100),
		QuietHoursStart:   getEnv("QUIET_HOURS_START", "21:00"),
		QuietHoursEnd:     getEnv("QUIET_HOURS_END", "08:00"),

		EmailProvider:     getEnv("EMAIL_PROVIDER", "sendgrid"),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Range Medical"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
