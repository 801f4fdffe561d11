package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds runtime settings for the gymkeeper CLI.
//
// Fields:
//   - APIBaseURL: scheme://host[:port][/prefix] of the gym API.
//   - StoragePath: SQLite file that keeps the session token between runs.
//   - ExpiryCheckInterval: how often the session re-checks token expiry.
//   - RequestTimeout: upper bound for a single API call.
//   - OnlineCheckInterval: how often the REPL probes server reachability.
//   - LogLevel: minimum level written to stderr.
//   - MetricsAddr: listen address for Prometheus metrics, empty disables.
type Config struct {
	APIBaseURL          string
	StoragePath         string
	ExpiryCheckInterval time.Duration
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
	MetricsAddr         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.StoragePath = "gymkeeper.db"
	c.ExpiryCheckInterval = time.Second
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

// Validate reports the first setting the client cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("api base url: missing host")
	}
	if c.StoragePath == "" {
		return errors.New("storage path is empty")
	}
	if c.ExpiryCheckInterval <= 0 {
		return fmt.Errorf("expiry check interval must be positive, got %s", c.ExpiryCheckInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
