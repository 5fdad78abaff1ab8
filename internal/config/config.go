// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Defaults live in New; Load layers an optional YAML file and BREEZE_* env vars on top.
//   - Load is the only place that decides whether the process may start.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// URL is the Breeze account base URL, e.g. https://demo.breezechms.com.
	URL string `koanf:"url"`

	// APIKey authenticates every upstream call.
	APIKey string `koanf:"api_key"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// UpstreamTimeout bounds a single Breeze API call.
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// AllowedOrigins is the CORS allow list. "*" allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config populated with defaults. Credentials have no default.
func New(_ context.Context) *Config {
	return &Config{
		Addr:            ":8000",
		LogLevel:        "info",
		UpstreamTimeout: 60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		AllowedOrigins:  []string{"*"},
	}
}

// Validate reports the first problem that prevents the process from serving.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("%w: url is required (BREEZE_URL)", ErrInvalidConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.URL)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: api_key is required (BREEZE_API_KEY)", ErrInvalidConfig)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("%w: upstream_timeout must be positive", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
