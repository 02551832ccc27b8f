// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("HTTP_BODY_LIMIT must be positive, got %d", c.Server.BodyLimit)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive when rate limiting is enabled")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	db := c.Database
	switch db.Driver {
	case DriverDuckDB, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be one of duckdb, postgres, sqlite, got %q", db.Driver)
	}
	if db.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if db.Driver == DriverPostgres && !strings.HasPrefix(db.URL, "postgres://") && !strings.HasPrefix(db.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must be a postgres:// URL when DATABASE_DRIVER=postgres")
	}
	if db.MaxConnections < 1 {
		return fmt.Errorf("DATABASE_MAX_CONNECTIONS must be at least 1, got %d", db.MaxConnections)
	}
	if db.MaxIdleConnections > db.MaxConnections {
		return fmt.Errorf("database.max_idle_connections (%d) must not exceed DATABASE_MAX_CONNECTIONS (%d)",
			db.MaxIdleConnections, db.MaxConnections)
	}
	if db.AcquireTimeout <= 0 {
		return fmt.Errorf("DATABASE_ACQUIRE_TIMEOUT must be positive")
	}
	if db.QueryTimeout <= 0 {
		return fmt.Errorf("DATABASE_QUERY_TIMEOUT must be positive")
	}

	bc := db.BootstrapClient
	if bc.ClientID != "" || bc.Secret != "" {
		if bc.ClientID == "" || bc.Secret == "" {
			return fmt.Errorf("THEREIWAS_BOOTSTRAP_CLIENT_ID and THEREIWAS_BOOTSTRAP_CLIENT_SECRET must be set together")
		}
		if len(bc.ClientID) > 36 {
			return fmt.Errorf("THEREIWAS_BOOTSTRAP_CLIENT_ID must be at most 36 characters")
		}
		if len(bc.Secret) > 10 {
			return fmt.Errorf("THEREIWAS_BOOTSTRAP_CLIENT_SECRET must be at most 10 characters")
		}
	}

	bu := db.BootstrapUser
	if bu.Username != "" || bu.Password != "" {
		if bu.Username == "" || bu.Password == "" {
			return fmt.Errorf("THEREIWAS_BOOTSTRAP_ADMIN_USERNAME and THEREIWAS_BOOTSTRAP_ADMIN_PASSWORD must be set together")
		}
		if len(bu.Password) < 8 || len(bu.Password) > 72 {
			return fmt.Errorf("THEREIWAS_BOOTSTRAP_ADMIN_PASSWORD must be between 8 and 72 bytes")
		}
		if bu.Role != "admin" && bu.Role != "viewer" {
			return fmt.Errorf("database.bootstrap_user.role must be admin or viewer, got %q", bu.Role)
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if (s.JWTPrivateKeyFile == "") != (s.JWTPublicKeyFile == "") {
		return fmt.Errorf("THEREIWAS_JWT_PRIVATE_KEY_FILE and THEREIWAS_JWT_PUBLIC_KEY_FILE must be set together")
	}
	if s.Issuer == "" || s.Audience == "" {
		return fmt.Errorf("THEREIWAS_JWT_ISSUER and THEREIWAS_JWT_AUDIENCE must not be empty")
	}
	if s.TokenLifetime <= 0 {
		return fmt.Errorf("THEREIWAS_TOKEN_LIFETIME must be positive")
	}
	if s.LoginRatePerMin < 1 || s.LoginBurst < 1 {
		return fmt.Errorf("THEREIWAS_LOGIN_RATE_PER_MIN and security.login_burst must be at least 1")
	}
	if s.ClientCacheTTL < 0 {
		return fmt.Errorf("THEREIWAS_CLIENT_CACHE_TTL must not be negative")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.ResolverMaxAttempts < 1 || c.Ingest.ResolverMaxAttempts > 5 {
		return fmt.Errorf("THEREIWAS_RESOLVER_MAX_ATTEMPTS must be between 1 and 5, got %d", c.Ingest.ResolverMaxAttempts)
	}
	if c.Ingest.BreakerEnabled {
		if c.Ingest.BreakerFailureThreshold == 0 {
			return fmt.Errorf("ingest.breaker_failure_threshold must be positive when the breaker is enabled")
		}
		if c.Ingest.BreakerTimeout <= 0 {
			return fmt.Errorf("ingest.breaker_timeout must be positive when the breaker is enabled")
		}
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case EventsNone:
		return nil
	case EventsMemory:
	case EventsNATS:
		if c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of none, memory, nats, got %q", c.Events.Backend)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("THEREIWAS_LOGGING_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("THEREIWAS_LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
