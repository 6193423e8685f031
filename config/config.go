// Package config loads runtime configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Defaults for values not set in the environment.
const (
	DefaultPort              = "3000"
	DefaultDBPath            = "focusflow.db"
	DefaultMaxChatMessageLen = 200
	DefaultMaxGaugeLevel     = 100
)

// Config holds all runtime configuration for the application.
type Config struct {
	Port               string
	DBPath             string
	JWTSecret          string
	JWTIssuer          string
	CORSAllowedOrigins string

	// MaxChatMessageLen bounds room chat text. Chat is deliberately terse;
	// the bound matches the original schema's message column width.
	MaxChatMessageLen int

	// MaxGaugeLevel is the upper bound of the live progress gauge.
	MaxGaugeLevel int
}

// Load reads configuration from the environment, falling back to defaults.
func Load() Config {
	cfg := Config{
		Port:               DefaultPort,
		DBPath:             DefaultDBPath,
		JWTIssuer:          "focusflow",
		CORSAllowedOrigins: "http://localhost:3000,http://localhost:8080",
		MaxChatMessageLen:  DefaultMaxChatMessageLen,
		MaxGaugeLevel:      DefaultMaxGaugeLevel,
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("FOCUSFLOW_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = v
	}
	if v := os.Getenv("CHAT_MAX_MESSAGE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxChatMessageLen = n
		}
	}
	if v := os.Getenv("MAX_GAUGE_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxGaugeLevel = n
		}
	}

	return cfg
}
