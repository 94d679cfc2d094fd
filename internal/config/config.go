package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Admin identity and token signing secret. Single-tenant by design.
	AdminUsername    string
	AdminPassword    string
	AdminTokenSecret string

	// Postgres connection string for doctor notes.
	DatabaseURL string

	// Redis backs the content-addressed TTS cache.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// AWS wiring for DynamoDB document storage and S3 archive export.
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	QueriesTable        string
	PolicyTable         string
	ArchiveBucket       string

	// Optional capability providers.
	GeminiAPIKey      string
	GeminiVisionModel string
	TTSProvider       string

	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		AdminTokenSecret: getEnv("ADMIN_TOKEN_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		QueriesTable:        getEnv("QUERIES_TABLE", "triage_queries"),
		PolicyTable:         getEnv("POLICY_TABLE", "triage_policy"),
		ArchiveBucket:       getEnv("ARCHIVE_BUCKET", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiVisionModel: getEnv("GEMINI_VISION_MODEL", "gemini-2.5-flash"),
		TTSProvider:       strings.ToLower(strings.TrimSpace(getEnv("TTS_PROVIDER", ""))),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerSec:    getEnvAsFloat("RATE_LIMIT_PER_SEC", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, dropping empty
// entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
