// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment and set only required var
	os.Clearenv()
	setEnv(t, "OBLOG_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/oblog.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/oblog.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.UploadsDir != "./uploads" {
		t.Errorf("UploadsDir = %q, want %q", cfg.UploadsDir, "./uploads")
	}
	if cfg.ImageMaxWidth != 1600 {
		t.Errorf("ImageMaxWidth = %d, want %d", cfg.ImageMaxWidth, 1600)
	}
	if cfg.SessionLifetime != 24*time.Hour {
		t.Errorf("SessionLifetime = %v, want %v", cfg.SessionLifetime, 24*time.Hour)
	}
	if cfg.CachePrefix != "oblog:" {
		t.Errorf("CachePrefix = %q, want %q", cfg.CachePrefix, "oblog:")
	}
	if cfg.CacheTTLDuration() != 5*time.Minute {
		t.Errorf("CacheTTLDuration() = %v, want %v", cfg.CacheTTLDuration(), 5*time.Minute)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true, want false")
	}
	if !cfg.DoSeed {
		t.Error("DoSeed = false, want true")
	}
	if cfg.DemoMode {
		t.Error("DemoMode = true, want false")
	}
	if cfg.AdminUsername != "admin" {
		t.Errorf("AdminUsername = %q, want %q", cfg.AdminUsername, "admin")
	}
	if cfg.LoginMaxFailures != 5 {
		t.Errorf("LoginMaxFailures = %d, want %d", cfg.LoginMaxFailures, 5)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "OBLOG_SESSION_SECRET", testSecret)
	setEnv(t, "OBLOG_DB_PATH", "/tmp/blog.db")
	setEnv(t, "OBLOG_SERVER_HOST", "0.0.0.0")
	setEnv(t, "OBLOG_SERVER_PORT", "3000")
	setEnv(t, "OBLOG_ENV", "production")
	setEnv(t, "OBLOG_LOG_LEVEL", "debug")
	setEnv(t, "OBLOG_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "OBLOG_CACHE_TTL", "60")
	setEnv(t, "OBLOG_SESSION_LIFETIME", "2h")
	setEnv(t, "OBLOG_ADMIN_PASSWORD", "s3cret-Password")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/tmp/blog.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/tmp/blog.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false, want true")
	}
	if cfg.CacheTTLDuration() != time.Minute {
		t.Errorf("CacheTTLDuration() = %v, want %v", cfg.CacheTTLDuration(), time.Minute)
	}
	if cfg.SessionLifetime != 2*time.Hour {
		t.Errorf("SessionLifetime = %v, want %v", cfg.SessionLifetime, 2*time.Hour)
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()

	_, err := Load()
	if err == nil {
		t.Error("Load() should fail without OBLOG_SESSION_SECRET")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31 bytes", strings.Repeat("a", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "OBLOG_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail with %d-byte secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_SessionSecretMinimumLength(t *testing.T) {
	os.Clearenv()
	secret32 := "Abcdefghijklmnopqrstuvwxyz123456"
	setEnv(t, "OBLOG_SESSION_SECRET", secret32)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SessionSecret != secret32 {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, secret32)
	}
}

func TestLoad_KnownWeakSecret(t *testing.T) {
	for _, weak := range knownWeakSecrets {
		t.Run(weak, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "OBLOG_SESSION_SECRET", weak)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should reject known weak secret %q", weak)
			}
		})
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	os.Clearenv()
	setEnv(t, "OBLOG_SESSION_SECRET", testSecret)
	setEnv(t, "OBLOG_SERVER_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail with out-of-range port")
	}
}

func TestLoad_ProductionSeedRequiresPassword(t *testing.T) {
	t.Run("missing password", func(t *testing.T) {
		os.Clearenv()
		setEnv(t, "OBLOG_SESSION_SECRET", testSecret)
		setEnv(t, "OBLOG_ENV", "production")

		if _, err := Load(); err == nil {
			t.Error("Load() should require OBLOG_ADMIN_PASSWORD when seeding in production")
		}
	})

	t.Run("seeding disabled", func(t *testing.T) {
		os.Clearenv()
		setEnv(t, "OBLOG_SESSION_SECRET", testSecret)
		setEnv(t, "OBLOG_ENV", "production")
		setEnv(t, "OBLOG_DO_SEED", "false")

		if _, err := Load(); err != nil {
			t.Errorf("Load() error: %v", err)
		}
	})
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcdefABCDEFabcdefABCDEFabcdefAB", false},
		{"abcdefABCDEF123456abcdefABCDEF12", true},
		{testSecret, true},
	}

	for _, tt := range tests {
		t.Run(tt.secret, func(t *testing.T) {
			if got := hasMinimumEntropy(tt.secret); got != tt.want {
				t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
			}
		})
	}
}
