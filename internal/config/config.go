package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Auth
	JWTSecret string

	// Booking workflow
	BookingFee       int    // fixed consultation fee charged at booking time
	ClinicOpensAt    string // "HH:MM", default working-hours template
	ClinicClosesAt   string
	SlotMinutes      int
	ClinicTimezone   string
	PaymentProviders []string // accepted mobile-money providers

	// Availability cache
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SlotCacheTTL  time.Duration

	// Chat pipeline
	UseMemoryQueue  bool
	WorkerCount     int
	ChatQueueURL    string
	ChatJobsTable   string
	BedrockModelID  string
	GeminiAPIKey    string
	GeminiModelID   string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Doctor profile images
	DoctorImageBucket string

	// Email notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		BookingFee:       getEnvAsInt("BOOKING_FEE", 10),
		ClinicOpensAt:    getEnv("CLINIC_OPENS_AT", "09:00"),
		ClinicClosesAt:   getEnv("CLINIC_CLOSES_AT", "17:00"),
		SlotMinutes:      getEnvAsInt("SLOT_MINUTES", 60),
		ClinicTimezone:   getEnv("CLINIC_TZ", "Africa/Mogadishu"),
		PaymentProviders: getEnvAsList("PAYMENT_PROVIDERS", []string{"jeeb", "evc", "edahab"}),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SlotCacheTTL:  getEnvAsDuration("SLOT_CACHE_TTL", 30*time.Second),

		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", true),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		ChatQueueURL:   getEnv("CHAT_QUEUE_URL", ""),
		ChatJobsTable:  getEnv("CHAT_JOBS_TABLE", "chat_jobs"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		DoctorImageBucket: getEnv("DOCTOR_IMAGE_BUCKET", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Caafimaad"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
