// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all settings
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	API           APIConfig           `koanf:"api"`
	Security      SecurityConfig      `koanf:"security"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8000)
//   - HTTP_TIMEOUT: Request read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path; empty means in-memory (default: /data/quotable.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit passed to DuckDB (default: 512MB)
//   - DUCKDB_THREADS: Worker threads; 0 means runtime.NumCPU() (default: 0)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// APIConfig holds pagination and response limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	MaxBodyBytes    int `koanf:"max_body_bytes"`
}

// SecurityConfig holds CORS and rate limiting settings.
//
// Environment Variables:
//   - CORS_ORIGINS: Comma-separated list of allowed origins (default: *)
//   - RATE_LIMIT_REQUESTS: Requests allowed per window (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window duration (default: 1m)
//   - DISABLE_RATE_LIMIT: Disable rate limiting entirely (default: false)
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// NotificationsConfig holds websocket notification room settings.
//
// Environment Variables:
//   - NOTIFICATIONS_PATH: Websocket endpoint path (default: /ws/notifications)
//   - NOTIFICATIONS_SEND_BUFFER: Per-client outbound queue size (default: 256)
//   - NOTIFICATIONS_WRITE_TIMEOUT: Write deadline for outbound frames (default: 10s)
//   - NOTIFICATIONS_PONG_TIMEOUT: Pong wait before a client is considered dead (default: 60s)
type NotificationsConfig struct {
	Path          string        `koanf:"path"`
	SendBuffer    int           `koanf:"send_buffer"`
	WriteTimeout  time.Duration `koanf:"write_timeout"`
	PongTimeout   time.Duration `koanf:"pong_timeout"`
	MaxMessageLen int64         `koanf:"max_message_len"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for malformed or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}

	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	if c.Notifications.Path == "" || c.Notifications.Path[0] != '/' {
		return fmt.Errorf("notifications.path must start with /, got %q", c.Notifications.Path)
	}
	if c.Notifications.SendBuffer < 1 {
		return fmt.Errorf("notifications.send_buffer must be positive, got %d", c.Notifications.SendBuffer)
	}
	if c.Notifications.PongTimeout <= c.Notifications.WriteTimeout {
		return fmt.Errorf("notifications.pong_timeout (%s) must exceed write_timeout (%s)",
			c.Notifications.PongTimeout, c.Notifications.WriteTimeout)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
