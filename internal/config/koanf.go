// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/thereiwas/config.yaml",
	"/etc/thereiwas/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       1 << 20, // 1 MiB
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:             DriverDuckDB,
			URL:                "/data/thereiwas.duckdb",
			MaxConnections:     15,
			MaxIdleConnections: 5,
			AcquireTimeout:     5 * time.Second,
			QueryTimeout:       10 * time.Second,
			ConnMaxLifetime:    time.Hour,
			ConnMaxIdleTime:    5 * time.Minute,
			MaxMemory:          "512MB",
			BootstrapUser: BootstrapUserConfig{
				Role: "admin",
			},
		},
		Security: SecurityConfig{
			Issuer:          "thereiwas",
			Audience:        "thereiwas",
			TokenLifetime:   time.Hour,
			LoginRatePerMin: 5,
			LoginBurst:      5,
			ClientCacheTTL:  30 * time.Second,
			ClientCacheSize: 1024,
		},
		Ingest: IngestConfig{
			ReportAccessPointConflicts: false,
			ResolverMaxAttempts:        2,
			BreakerEnabled:             true,
			BreakerFailureThreshold:    5,
			BreakerTimeout:             30 * time.Second,
		},
		Events: EventsConfig{
			Backend:       EventsMemory,
			NATSURL:       "nats://127.0.0.1:4222",
			Topic:         "thereiwas.locations.stored",
			BufferSize:    256,
			StreamEnabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration with the following precedence (lowest first):
//  1. struct defaults
//  2. YAML config file (CONFIG_PATH or DefaultConfigPaths)
//  3. environment variables
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in defaults without reading files or env.
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_host":                          "server.host",
	"http_port":                          "server.port",
	"http_body_limit":                    "server.body_limit",
	"http_shutdown_timeout":              "server.shutdown_timeout",
	"rate_limit_requests":                "server.rate_limit_reqs",
	"rate_limit_window":                  "server.rate_limit_window",
	"disable_rate_limit":                 "server.rate_limit_disabled",
	"cors_origins":                       "server.cors_origins",
	"database_url":                       "database.url",
	"database_driver":                    "database.driver",
	"database_max_connections":           "database.max_connections",
	"database_acquire_timeout":           "database.acquire_timeout",
	"database_query_timeout":             "database.query_timeout",
	"duckdb_max_memory":                  "database.max_memory",
	"thereiwas_bootstrap_client_id":      "database.bootstrap_client.client_id",
	"thereiwas_bootstrap_client_secret":  "database.bootstrap_client.secret",
	"thereiwas_bootstrap_admin_username": "database.bootstrap_user.username",
	"thereiwas_bootstrap_admin_password": "database.bootstrap_user.password",
	"thereiwas_jwt_private_key_file":     "security.jwt_private_key_file",
	"thereiwas_jwt_public_key_file":      "security.jwt_public_key_file",
	"thereiwas_jwt_issuer":               "security.issuer",
	"thereiwas_jwt_audience":             "security.audience",
	"thereiwas_token_lifetime":           "security.token_lifetime",
	"thereiwas_login_rate_per_min":       "security.login_rate_per_min",
	"thereiwas_client_cache_ttl":         "security.client_cache_ttl",
	"thereiwas_report_ap_conflicts":      "ingest.report_access_point_conflicts",
	"thereiwas_resolver_max_attempts":    "ingest.resolver_max_attempts",
	"thereiwas_breaker_enabled":          "ingest.breaker_enabled",
	"events_backend":                     "events.backend",
	"events_topic":                       "events.topic",
	"events_stream_enabled":              "events.stream_enabled",
	"nats_url":                           "events.nats_url",
	"thereiwas_logging_level":            "logging.level",
	"thereiwas_logfile_path":             "logging.file_path",
	"thereiwas_log_format":               "logging.format",
	"thereiwas_log_caller":               "logging.caller",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
