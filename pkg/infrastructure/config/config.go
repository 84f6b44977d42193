// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config is the full runtime configuration of the server
type Config struct {
	// DatabaseURL is the Postgres connection string (pgx format).
	DatabaseURL string
	// AuthURL is the base URL of the identity provider.
	AuthURL string
	// AuthServiceKey authenticates this service to the identity provider.
	AuthServiceKey string
	// StorageBucket is the public bucket serving component images.
	StorageBucket string
	// StorageBaseURL is the host prefix for derived image URLs.
	StorageBaseURL string

	ListenAddr string
	LogLevel   string
}

const (
	defaultListenAddr = ":8080"
	defaultLogLevel   = "info"
)

// Load reads the configuration from the environment. All required
// variables are checked before returning so a misconfigured deploy
// fails with one complete message.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AuthURL:        os.Getenv("AUTH_URL"),
		AuthServiceKey: os.Getenv("AUTH_SERVICE_KEY"),
		StorageBucket:  os.Getenv("STORAGE_BUCKET"),
		StorageBaseURL: os.Getenv("STORAGE_BASE_URL"),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.AuthURL == "" {
		missing = append(missing, "AUTH_URL")
	}
	if cfg.AuthServiceKey == "" {
		missing = append(missing, "AUTH_SERVICE_KEY")
	}
	if cfg.StorageBucket == "" {
		missing = append(missing, "STORAGE_BUCKET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	return cfg, nil
}
