// Package config centralises configuration parsing for the exercise tracker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config captures runtime configuration values for the exercise tracker.
type Config struct {
	HTTPAddress        string
	StoreBackend       string
	MongoURI           string
	MongoDatabase      string
	PostgresURL        string
	StoreTimeout       time.Duration
	KafkaBrokers       []string // Empty disables event publishing.
	EventsTopic        string
	PublishTimeout     time.Duration
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then environment variables into
// Config, applying defaults for local dev. Variables already set in the
// environment win over .env entries.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":"+getEnv("PORT", "3000")),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DATABASE", "exercise_tracker"),
		PostgresURL:        getEnv("POSTGRES_URL", ""),
		StoreTimeout:       getDurationEnv("STORE_TIMEOUT", 5*time.Second),
		KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		EventsTopic:        getEnv("EVENTS_TOPIC", "exercise_events"),
		PublishTimeout:     getDurationEnv("EVENTS_PUBLISH_TIMEOUT", 3*time.Second),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	defaultBackend := BackendMemory
	if cfg.MongoURI != "" {
		defaultBackend = BackendMongo
	}
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", defaultBackend))
	return cfg
}

// Validate reports configuration that cannot start the service.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_BACKEND=mongo")
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when STORE_BACKEND=postgres")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of mongo, postgres, memory; got %q", c.StoreBackend)
	}
	if len(c.KafkaBrokers) > 0 && strings.TrimSpace(c.EventsTopic) == "" {
		return errors.New("EVENTS_TOPIC must not be empty when KAFKA_BROKERS is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
