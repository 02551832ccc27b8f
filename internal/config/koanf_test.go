// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.BodyLimit != 1<<20 {
		t.Errorf("Server.BodyLimit = %d, want 1MiB", cfg.Server.BodyLimit)
	}
	if cfg.Database.Driver != DriverDuckDB {
		t.Errorf("Database.Driver = %q, want duckdb", cfg.Database.Driver)
	}
	if cfg.Database.MaxConnections != 15 {
		t.Errorf("Database.MaxConnections = %d, want 15", cfg.Database.MaxConnections)
	}
	if cfg.Database.AcquireTimeout != 5*time.Second {
		t.Errorf("Database.AcquireTimeout = %v, want 5s", cfg.Database.AcquireTimeout)
	}
	if cfg.Ingest.ReportAccessPointConflicts {
		t.Error("access point conflicts should be reconciled by default")
	}
	if cfg.Ingest.ResolverMaxAttempts != 2 {
		t.Errorf("Ingest.ResolverMaxAttempts = %d, want 2", cfg.Ingest.ResolverMaxAttempts)
	}
	if cfg.Security.TokenLifetime != time.Hour {
		t.Errorf("Security.TokenLifetime = %v, want 1h", cfg.Security.TokenLifetime)
	}
	if cfg.Events.Backend != EventsMemory {
		t.Errorf("Events.Backend = %q, want memory", cfg.Events.Backend)
	}
	if !cfg.Events.StreamEnabled {
		t.Error("position stream should be enabled by default")
	}
	if cfg.Security.ClientCacheTTL != 30*time.Second {
		t.Errorf("Security.ClientCacheTTL = %v, want 30s", cfg.Security.ClientCacheTTL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DATABASE_URL", "database.url"},
		{"DATABASE_DRIVER", "database.driver"},
		{"HTTP_PORT", "server.port"},
		{"THEREIWAS_LOGGING_LEVEL", "logging.level"},
		{"THEREIWAS_LOGFILE_PATH", "logging.file_path"},
		{"THEREIWAS_JWT_PRIVATE_KEY_FILE", "security.jwt_private_key_file"},
		{"THEREIWAS_BOOTSTRAP_CLIENT_ID", "database.bootstrap_client.client_id"},
		{"THEREIWAS_REPORT_AP_CONFLICTS", "ingest.report_access_point_conflicts"},
		{"NATS_URL", "events.nats_url"},
		{"cors_origins", "server.cors_origins"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() with missing file = %q, want empty", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("DATABASE_ACQUIRE_TIMEOUT", "2s")
	t.Setenv("THEREIWAS_LOGGING_LEVEL", "debug")
	t.Setenv("THEREIWAS_REPORT_AP_CONFLICTS", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.URL != ":memory:" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.AcquireTimeout != 2*time.Second {
		t.Errorf("Database.AcquireTimeout = %v, want 2s", cfg.Database.AcquireTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if !cfg.Ingest.ReportAccessPointConflicts {
		t.Error("ReportAccessPointConflicts should be true")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}

	// Untouched values keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

func TestLoadConfigFileAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 4100
database:
  driver: sqlite
  url: /tmp/thereiwas.db
events:
  backend: none
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("THEREIWAS_LOGGING_LEVEL", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100 from file", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want sqlite from file", cfg.Database.Driver)
	}
	if cfg.Events.Backend != EventsNone {
		t.Errorf("Events.Backend = %q, want none", cfg.Events.Backend)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, env should win over file", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for unknown driver")
	}
	if !strings.Contains(err.Error(), "DATABASE_DRIVER") {
		t.Errorf("error should name DATABASE_DRIVER, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"rate limit disabled skips checks", func(c *Config) {
			c.Server.RateLimitDisabled = true
			c.Server.RateLimitReqs = 0
		}, ""},
		{"no database url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"postgres needs dsn", func(c *Config) { c.Database.Driver = DriverPostgres }, "postgres://"},
		{"postgres dsn", func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.URL = "postgres://u:p@localhost/thereiwas"
		}, ""},
		{"zero connections", func(c *Config) { c.Database.MaxConnections = 0 }, "DATABASE_MAX_CONNECTIONS"},
		{"idle exceeds max", func(c *Config) { c.Database.MaxIdleConnections = 99 }, "max_idle_connections"},
		{"no acquire timeout", func(c *Config) { c.Database.AcquireTimeout = 0 }, "DATABASE_ACQUIRE_TIMEOUT"},
		{"half a bootstrap client", func(c *Config) { c.Database.BootstrapClient.ClientID = "abc" }, "set together"},
		{"bootstrap secret too long", func(c *Config) {
			c.Database.BootstrapClient = BootstrapClientConfig{ClientID: "abc", Secret: "01234567890"}
		}, "at most 10"},
		{"bootstrap password too short", func(c *Config) {
			c.Database.BootstrapUser = BootstrapUserConfig{Username: "admin", Password: "short", Role: "admin"}
		}, "between 8 and 72"},
		{"bootstrap bad role", func(c *Config) {
			c.Database.BootstrapUser = BootstrapUserConfig{Username: "admin", Password: "longenough", Role: "root"}
		}, "admin or viewer"},
		{"one jwt key", func(c *Config) { c.Security.JWTPrivateKeyFile = "/keys/priv.pem" }, "set together"},
		{"negative client cache ttl", func(c *Config) { c.Security.ClientCacheTTL = -time.Second }, "CLIENT_CACHE_TTL"},
		{"resolver attempts", func(c *Config) { c.Ingest.ResolverMaxAttempts = 9 }, "RESOLVER_MAX_ATTEMPTS"},
		{"breaker threshold", func(c *Config) { c.Ingest.BreakerFailureThreshold = 0 }, "breaker_failure_threshold"},
		{"breaker disabled skips threshold", func(c *Config) {
			c.Ingest.BreakerEnabled = false
			c.Ingest.BreakerFailureThreshold = 0
		}, ""},
		{"unknown events backend", func(c *Config) { c.Events.Backend = "kafka" }, "EVENTS_BACKEND"},
		{"nats without url", func(c *Config) {
			c.Events.Backend = EventsNATS
			c.Events.NATSURL = ""
		}, "NATS_URL"},
		{"events none ignores topic", func(c *Config) {
			c.Events.Backend = EventsNone
			c.Events.Topic = ""
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "THEREIWAS_LOGGING_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "THEREIWAS_LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	if got := s.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q", got)
	}
}
