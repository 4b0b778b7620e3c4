// Package config provides configuration management for the view router.
// It loads configuration from environment variables with sensible defaults
// and validates it so the router fails fast on a bad setup.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: HTTP adapter port (default: 8080)
//   - LOG_LEVEL: Logging level, also "simple" or "detailed" (default: info)
//   - TLS_CERT_FILE, TLS_KEY_FILE: Serve the adapter over HTTPS when both are set
//   - RATE_LIMIT: Navigation requests per second, 0 disables (default: 0)
//   - RATE_BURST: Requests allowed above RATE_LIMIT in a burst (default: 10)
//
// Routing:
//   - TOKEN_DIALECT: "slash" or "colon" (default: slash)
//   - START_ROUTE: Token navigated to when the history is empty
//   - ERROR_ROUTE: Token that absorbs unknown or malformed tokens
//   - MAX_REDIRECTS: Consecutive filter redirects allowed (default: 8)
//   - SKIP_ROUTE_VALIDATION: Keep first-registered-wins for ambiguous routes (default: false)
//   - MANIFEST_PATH: YAML route manifest (default: routes.yaml)
//
// Tracking and history:
//   - TRACKER_BACKEND: "none", "local" or "redis" (default: local)
//   - TRACKER_KEY_PREFIX: Redis key prefix (default: nav:)
//   - TRACKER_RECENT_LIMIT: Recent navigations kept (default: 50)
//   - HISTORY_BACKEND: "memory" or "redis" (default: memory)
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Auth filter:
//   - AUTH_SECRET: HS256 secret; enables the auth filter when set (minimum 32 characters)
//   - LOGIN_ROUTE: Token protected routes redirect to
//   - PROTECTED_PREFIXES: Comma separated route prefixes, e.g. "/app/users,/admin"
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"view-router/internal/common/validation"
)

// Config holds all configuration values for the view router. String fields
// correspond to environment variables; call Validate before use.
type Config struct {
	// Application settings
	Port     string // HTTP adapter port
	LogLevel string // Logging level (debug, info, warn, error, simple, detailed)
	TLSCert  string // TLS certificate file
	TLSKey   string // TLS private key file

	RateLimit string // Navigation requests per second
	RateBurst string // Burst above RateLimit

	// Routing
	TokenDialect        string // slash or colon
	StartRoute          string // Boot token when the history is empty
	ErrorRoute          string // Token absorbing unknown routes
	MaxRedirects        string // Filter redirect cap
	SkipRouteValidation bool   // Skip the ambiguous route check
	ManifestPath        string // YAML route manifest

	// Tracking and history
	TrackerBackend     string // none, local or redis
	TrackerKeyPrefix   string // Redis key prefix
	TrackerRecentLimit string // Recent navigations kept
	HistoryBackend     string // memory or redis

	// Redis configuration
	RedisAddress  string // Redis server address (host:port)
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number (0-15)
	RedisPoolSize string // Redis connection pool size

	// Auth filter
	AuthSecret        string // HS256 secret
	LoginRoute        string // Redirect target for protected routes
	ProtectedPrefixes string // Comma separated route prefixes
}

// Load creates a Config from environment variables, falling back to defaults.
// It does not validate; call Validate on the result.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		TLSCert:  getEnv("TLS_CERT_FILE", ""),
		TLSKey:   getEnv("TLS_KEY_FILE", ""),

		RateLimit: getEnv("RATE_LIMIT", "0"),
		RateBurst: getEnv("RATE_BURST", "10"),

		TokenDialect:        getEnv("TOKEN_DIALECT", "slash"),
		StartRoute:          getEnv("START_ROUTE", ""),
		ErrorRoute:          getEnv("ERROR_ROUTE", ""),
		MaxRedirects:        getEnv("MAX_REDIRECTS", "8"),
		SkipRouteValidation: getBoolEnv("SKIP_ROUTE_VALIDATION", false),
		ManifestPath:        getEnv("MANIFEST_PATH", "routes.yaml"),

		TrackerBackend:     getEnv("TRACKER_BACKEND", "local"),
		TrackerKeyPrefix:   getEnv("TRACKER_KEY_PREFIX", "nav:"),
		TrackerRecentLimit: getEnv("TRACKER_RECENT_LIMIT", "50"),
		HistoryBackend:     getEnv("HISTORY_BACKEND", "memory"),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		AuthSecret:        getEnv("AUTH_SECRET", ""),
		LoginRoute:        getEnv("LOGIN_ROUTE", ""),
		ProtectedPrefixes: getEnv("PROTECTED_PREFIXES", ""),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a
// default value when it is unset or does not parse.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks field formats and cross-field requirements. It returns
// every problem found in one validation error.
func (c *Config) Validate() error {
	v := validation.NewValidator()

	if port, err := strconv.Atoi(c.Port); err != nil {
		v.Validate(func() error { return fmt.Errorf("PORT must be a valid port number between 1 and 65535") })
	} else {
		v.RequireRange(port, 1, 65535, "PORT")
	}

	v.ValidateIf((c.TLSCert == "") != (c.TLSKey == ""), func() error {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	})

	if c.RateLimit != "" && c.RateLimit != "0" {
		v.RequirePositive(atoi(c.RateLimit), "RATE_LIMIT")
		v.RequirePositive(atoi(c.RateBurst), "RATE_BURST")
	}

	v.RequireOneOf(c.TokenDialect, []string{"slash", "colon"}, "TOKEN_DIALECT")
	v.RequireOneOf(c.TrackerBackend, []string{"none", "local", "redis"}, "TRACKER_BACKEND")
	v.RequireOneOf(c.HistoryBackend, []string{"memory", "redis"}, "HISTORY_BACKEND")

	if c.StartRoute != "" {
		v.RequireRouteToken(c.StartRoute, "START_ROUTE")
	}
	if c.ErrorRoute != "" {
		v.RequireRouteToken(c.ErrorRoute, "ERROR_ROUTE")
	}

	v.RequirePositive(atoi(c.MaxRedirects), "MAX_REDIRECTS")
	v.RequirePositive(atoi(c.TrackerRecentLimit), "TRACKER_RECENT_LIMIT")

	if c.UsesRedis() {
		v.RequireString(c.RedisAddress, "REDIS_ADDRESS")
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			v.Validate(func() error { return fmt.Errorf("REDIS_DB must be a number between 0 and 15") })
		}
		v.RequirePositive(atoi(c.RedisPoolSize), "REDIS_POOL_SIZE")
	}

	if c.AuthSecret != "" {
		v.ValidateIf(len(c.AuthSecret) < 32, func() error {
			return fmt.Errorf("AUTH_SECRET must be at least 32 characters long for security")
		})
		v.RequireRouteToken(c.LoginRoute, "LOGIN_ROUTE")
		v.ValidateIf(len(c.Prefixes()) == 0, func() error {
			return fmt.Errorf("PROTECTED_PREFIXES is required when AUTH_SECRET is set")
		})
	}

	return v.Error()
}

// UsesRedis reports whether a backend needs the Redis connection.
func (c *Config) UsesRedis() bool {
	return c.TrackerBackend == "redis" || c.HistoryBackend == "redis"
}

// Prefixes returns the protected route prefixes.
func (c *Config) Prefixes() []string {
	var out []string
	for _, p := range strings.Split(c.ProtectedPrefixes, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MaxRedirectsValue returns MAX_REDIRECTS as a number, 0 when invalid.
func (c *Config) MaxRedirectsValue() int {
	return atoi(c.MaxRedirects)
}

// RecentLimitValue returns TRACKER_RECENT_LIMIT as a number, 0 when invalid.
func (c *Config) RecentLimitValue() int {
	return atoi(c.TrackerRecentLimit)
}

// RateLimitValue returns RATE_LIMIT as a number, 0 when disabled or invalid.
func (c *Config) RateLimitValue() int {
	return atoi(c.RateLimit)
}

// RateBurstValue returns RATE_BURST as a number, at least 1.
func (c *Config) RateBurstValue() int {
	if n := atoi(c.RateBurst); n > 0 {
		return n
	}
	return 1
}

// RedisDBValue returns REDIS_DB as a number.
func (c *Config) RedisDBValue() int {
	return atoi(c.RedisDB)
}

// RedisPoolSizeValue returns REDIS_POOL_SIZE as a number.
func (c *Config) RedisPoolSizeValue() int {
	return atoi(c.RedisPoolSize)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
