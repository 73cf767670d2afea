// Package config loads engine configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the engine host configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string

	// MetricsAddr is the listen address of the metrics/health endpoint.
	MetricsAddr string

	// JWTSecret signs session tokens.
	JWTSecret string

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() *Config {
	godotenv.Load()

	return &Config{
		DBPath:      getEnv("DB_PATH", "./data/trolly.db"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getDuration("TOKEN_TTL", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
