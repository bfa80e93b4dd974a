package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port           string
	DatabaseDriver string // sqlite, postgres or none
	DatabaseURL    string
	LogLevel       string

	// Single credential pair guarding the API
	AuthUsername  string
	AuthPassword  string
	SessionSecret string
	SessionTTL    time.Duration

	// Share links
	ShareSecret   string
	SharePassword string
	PublicBaseURL string

	CountScheduledPayments bool
	SnapshotOnShutdown     bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:    getEnv("DATABASE_URL", "data/loanbook.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		AuthUsername:  getEnv("AUTH_USERNAME", "admin"),
		AuthPassword:  getEnv("AUTH_PASSWORD", "admin"),
		SessionSecret: getEnv("SESSION_SECRET", "change-me-session-secret"),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),

		ShareSecret:   getEnv("SHARE_SECRET", "change-me-share-secret"),
		SharePassword: getEnv("SHARE_PASSWORD", "1234"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080/api/v1"), "/"),

		CountScheduledPayments: getBool("COUNT_SCHEDULED_PAYMENTS", true),
		SnapshotOnShutdown:     getBool("SNAPSHOT_ON_SHUTDOWN", true),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
