package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL      string
	AVKey      string
	Port       string
	AppID      string
	AuthSecret string
	LogLevel   string
	SessionTTL time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first; values already set
// in the shell take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	// An empty AV_KEY is allowed; quote lookups then report the missing key.
	avKey := os.Getenv("AV_KEY")

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		appID = "stocktrack"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	sessionTTL := 720 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		sessionTTL = d
	}

	return &Config{
		PGURL:      pgURL,
		AVKey:      avKey,
		Port:       port,
		AppID:      appID,
		AuthSecret: authSecret,
		LogLevel:   logLevel,
		SessionTTL: sessionTTL,
	}, nil
}
