// Package config loads runtime settings from the environment.
//
// An optional .env file in the working directory is read first; variables
// already set in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvBaseURL   = "PIXEL_MCP_BASE_URL"
	EnvCSRFToken = "PIXEL_MCP_CSRF_TOKEN"
	EnvSessionID = "PIXEL_MCP_SESSION_ID"
	EnvTimeout   = "PIXEL_MCP_TIMEOUT"
	EnvLogLevel  = "PIXEL_MCP_LOG_LEVEL"
	EnvLogFormat = "PIXEL_MCP_LOG_FORMAT"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second
)

// Config holds the settings of one server process.
type Config struct {
	BaseURL   string
	CSRFToken string
	SessionID string
	Timeout   time.Duration
	LogLevel  logrus.Level
	LogFormat string // "text" or "json"
}

// Load reads .env files (when present) and then the environment.
//
// With no files given, ".env" in the working directory is tried. A missing
// file is not an error; a malformed one is.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL:   getenv(EnvBaseURL, DefaultBaseURL),
		CSRFToken: os.Getenv(EnvCSRFToken),
		SessionID: os.Getenv(EnvSessionID),
		Timeout:   DefaultTimeout,
		LogLevel:  logrus.InfoLevel,
		LogFormat: strings.ToLower(getenv(EnvLogFormat, "text")),
	}

	if raw := os.Getenv(EnvTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid %s %q: want a non-negative duration such as 30s", EnvTimeout, raw)
		}
		cfg.Timeout = d
	}

	if raw := os.Getenv(EnvLogLevel); raw != "" {
		level, err := logrus.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid %s %q: want text or json", EnvLogFormat, cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger returns a logger configured by cfg. Output goes to stderr since
// stdout carries the protocol.
func (cfg *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
