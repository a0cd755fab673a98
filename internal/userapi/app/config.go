package app

import (
	"os"
	"strconv"
	"time"

	"github.com/arkelhq/userapi/pkg/jwtx"
)

type Config struct {
	JWTSecret string        // Required: HS256 signing key, at least 32 bytes
	TokenTTL  time.Duration // Optional: access token lifetime (default: 10m)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./userapi.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	BootstrapName     string // Optional: name for the seeded admin (default: admin)
	BootstrapEmail    string // Optional: email for the seeded admin
	BootstrapPassword string // Optional: password for the seeded admin; seeding is skipped when empty
}

func LoadConfig() Config {
	return Config{
		JWTSecret: os.Getenv("USERAPI_JWT_SECRET"),
		TokenTTL:  getEnvDurationOrDefault("USERAPI_TOKEN_TTL", jwtx.DefaultTTL),

		DatabaseFile:        getEnvOrDefault("USERAPI_DATABASE_FILE", "userapi.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		BootstrapName:     getEnvOrDefault("USERAPI_BOOTSTRAP_NAME", "admin"),
		BootstrapEmail:    getEnvOrDefault("USERAPI_BOOTSTRAP_EMAIL", "admin@localhost"),
		BootstrapPassword: os.Getenv("USERAPI_BOOTSTRAP_PASSWORD"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
