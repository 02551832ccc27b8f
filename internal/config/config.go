// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package config loads ThereIWas configuration from struct defaults, an
// optional YAML file and environment variables, in that order of precedence.
//
// Environment Variables (most common):
//   - DATABASE_URL: Postgres DSN, or file path for duckdb/sqlite
//   - DATABASE_DRIVER: duckdb (default), postgres, sqlite
//   - THEREIWAS_LOGGING_LEVEL: trace, debug, info, warn, error
//   - THEREIWAS_LOGFILE_PATH: optional log file
//   - THEREIWAS_JWT_PRIVATE_KEY_FILE / THEREIWAS_JWT_PUBLIC_KEY_FILE: Ed25519 PEM keys
//   - HTTP_PORT: listen port (default 3000)
package config

import "time"

// Supported database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported event backends.
const (
	EventsNone   = "none"
	EventsMemory = "memory"
	EventsNATS   = "nats"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	BodyLimit         int64         `koanf:"body_limit"` // bytes
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds relational store settings
type DatabaseConfig struct {
	Driver             string        `koanf:"driver"`
	URL                string        `koanf:"url"`
	MaxConnections     int           `koanf:"max_connections"`
	MaxIdleConnections int           `koanf:"max_idle_connections"`
	AcquireTimeout     time.Duration `koanf:"acquire_timeout"` // bound on waiting for a pooled connection
	QueryTimeout       time.Duration `koanf:"query_timeout"`
	ConnMaxLifetime    time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `koanf:"conn_max_idle_time"`
	MaxMemory          string        `koanf:"max_memory"` // duckdb only

	BootstrapClient BootstrapClientConfig `koanf:"bootstrap_client"`
	BootstrapUser   BootstrapUserConfig   `koanf:"bootstrap_user"`
}

// BootstrapClientConfig seeds one client token on startup when set.
type BootstrapClientConfig struct {
	ClientID    string `koanf:"client_id"`
	Secret      string `koanf:"secret"`
	Description string `koanf:"description"`
}

// BootstrapUserConfig seeds one user on startup when set.
type BootstrapUserConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Role     string `koanf:"role"`
}

// SecurityConfig holds token and login settings
type SecurityConfig struct {
	JWTPrivateKeyFile string        `koanf:"jwt_private_key_file"`
	JWTPublicKeyFile  string        `koanf:"jwt_public_key_file"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
	TokenLifetime     time.Duration `koanf:"token_lifetime"`
	LoginRatePerMin   int           `koanf:"login_rate_per_min"`
	LoginBurst        int           `koanf:"login_burst"`

	// ClientCacheTTL of zero disables client token caching.
	ClientCacheTTL  time.Duration `koanf:"client_cache_ttl"`
	ClientCacheSize int           `koanf:"client_cache_size"`
}

// IngestConfig tunes the OwnTracks ingestion pipeline
type IngestConfig struct {
	// ReportAccessPointConflicts surfaces a lost access-point insert race as
	// HTTP 409 instead of reconciling it.
	ReportAccessPointConflicts bool `koanf:"report_access_point_conflicts"`

	// ResolverMaxAttempts bounds find/insert rounds per resolution.
	ResolverMaxAttempts int `koanf:"resolver_max_attempts"`

	BreakerEnabled          bool          `koanf:"breaker_enabled"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"` // consecutive failures
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`           // open -> half-open
}

// EventsConfig selects where location.stored events go
type EventsConfig struct {
	Backend    string `koanf:"backend"`
	NATSURL    string `koanf:"nats_url"`
	Topic      string `koanf:"topic"`
	BufferSize int64  `koanf:"buffer_size"` // memory backend output buffer

	// StreamEnabled serves GET /v1/positions/stream. Memory backend only.
	StreamEnabled bool `koanf:"stream_enabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level    string `koanf:"level"`
	Format   string `koanf:"format"`
	Caller   bool   `koanf:"caller"`
	FilePath string `koanf:"file_path"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
