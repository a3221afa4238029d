package config

import (
	"os"
	"strconv"
)

// AppConfig represents the application configuration. It is loaded once at
// startup and read-only afterwards.
type AppConfig struct {
	Port             string
	Environment      string
	GatewayBaseURL   string
	AppleMerchantID  string
	AttemptDBPath    string
	EnableAttemptLog bool
	OpenSearchURL    string
	OpenSearchUser   string
	OpenSearchPass   string
	EnableLogging    bool
	LoggingLevel     string
	LogRetentionDays int
}

var appConfigInstance *AppConfig

// GetAppConfig returns the application configuration.
func GetAppConfig() *AppConfig {
	if appConfigInstance == nil {
		appConfigInstance = &AppConfig{
			Port:             GetEnv("APP_PORT", "8080"),
			Environment:      GetEnv("ENVIRONMENT", "development"),
			GatewayBaseURL:   GetEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			AppleMerchantID:  GetEnv("APPLE_MERCHANT_ID", ""),
			AttemptDBPath:    GetEnv("ATTEMPT_DB_PATH", "data/attempts.db"),
			EnableAttemptLog: GetBoolEnv("ENABLE_ATTEMPT_LOG", true),
			OpenSearchURL:    GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
			OpenSearchUser:   GetEnv("OPENSEARCH_USER", ""),
			OpenSearchPass:   GetEnv("OPENSEARCH_PASSWORD", ""),
			EnableLogging:    GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
			LoggingLevel:     GetEnv("LOGGING_LEVEL", "info"),
			LogRetentionDays: GetIntEnv("LOG_RETENTION_DAYS", 30),
		}
	}
	return appConfigInstance
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value.
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value.
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
