// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from OBLOG_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"OBLOG_DB_PATH" envDefault:"./data/oblog.db"`
	SessionSecret string `env:"OBLOG_SESSION_SECRET,required"`
	ServerHost    string `env:"OBLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OBLOG_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OBLOG_ENV" envDefault:"development"`
	LogLevel      string `env:"OBLOG_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"OBLOG_UPLOADS_DIR" envDefault:"./uploads"`
	ImageMaxWidth int    `env:"OBLOG_IMAGE_MAX_WIDTH" envDefault:"1600"`

	// Session configuration
	SessionLifetime time.Duration `env:"OBLOG_SESSION_LIFETIME" envDefault:"24h"`

	// Cache configuration
	RedisURL    string `env:"OBLOG_REDIS_URL"`                        // Optional Redis URL for a shared listing cache
	CachePrefix string `env:"OBLOG_CACHE_PREFIX" envDefault:"oblog:"` // Redis key prefix
	CacheTTL    int    `env:"OBLOG_CACHE_TTL" envDefault:"300"`       // Listing cache TTL in seconds

	// Login protection
	LoginRatePerMinute int `env:"OBLOG_LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginMaxFailures   int `env:"OBLOG_LOGIN_MAX_FAILURES" envDefault:"5"`

	// Seeding configuration
	DoSeed        bool   `env:"OBLOG_DO_SEED" envDefault:"true"`  // Create the default admin when none exists
	DemoMode      bool   `env:"OBLOG_DEMO_MODE" envDefault:"false"` // Also seed a demo reader, post and thread
	AdminUsername string `env:"OBLOG_ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"OBLOG_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"OBLOG_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns CacheTTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The CSRF token key needs 32 bytes.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("OBLOG_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("OBLOG_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OBLOG_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("OBLOG_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	if !cfg.IsDevelopment() && cfg.DoSeed && cfg.AdminPassword == "" {
		return nil, fmt.Errorf("OBLOG_ADMIN_PASSWORD is required to seed the admin account outside development")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
