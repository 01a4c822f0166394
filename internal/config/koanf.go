// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/locrelay/config.yaml",
	"/etc/locrelay/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3001,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Store: StoreConfig{
			Backend:             "badger",
			BadgerPath:          "/data/events",
			RedisKey:            "locrelay:events",
			MongoDatabase:       "locrelay",
			MongoCollection:     "eventLocations",
			OpTimeout:           5 * time.Second,
			BreakerEnabled:      true,
			BreakerMinRequests:  5,
			BreakerFailureRatio: 0.6,
			BreakerTimeout:      30 * time.Second,
		},
		Media: MediaConfig{
			Backend:        "local",
			Dir:            "uploads",
			MaxUploadBytes: 10 << 20, // 10 MiB
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Relay: RelayConfig{
			ReconcileInterval: 10 * time.Second,
			SweepInterval:     10 * time.Second,
			ClientSendBuffer:  256,
			InboundRate:       20,
			InboundBurst:      40,
			AllowedOrigins:    []string{"*"},
		},
		Security: SecurityConfig{
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf builds the configuration from defaults, the optional YAML
// file and the environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
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

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as a single string
// from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"relay.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			continue
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":       "server.host",
	"http_port":       "server.port",
	"port":            "server.port",
	"http_timeout":    "server.timeout",
	"public_base_url": "server.public_base_url",
	"environment":     "server.environment",

	// Durable store
	"store_backend":               "store.backend",
	"badger_path":                 "store.badger_path",
	"redis_url":                   "store.redis_url",
	"redis_key":                   "store.redis_key",
	"mongo_uri":                   "store.mongo_uri",
	"mongo_database":              "store.mongo_database",
	"mongo_collection":            "store.mongo_collection",
	"store_op_timeout":            "store.op_timeout",
	"store_breaker_enabled":       "store.breaker_enabled",
	"store_breaker_min_requests":  "store.breaker_min_requests",
	"store_breaker_failure_ratio": "store.breaker_failure_ratio",
	"store_breaker_timeout":       "store.breaker_timeout",

	// Media
	"media_backend":        "media.backend",
	"media_dir":            "media.dir",
	"upload_dir":           "media.dir",
	"max_upload_bytes":     "media.max_upload_bytes",
	"s3_bucket":            "media.s3.bucket",
	"s3_region":            "media.s3.region",
	"s3_endpoint":          "media.s3.endpoint",
	"s3_access_key_id":     "media.s3.access_key_id",
	"s3_secret_access_key": "media.s3.secret_access_key",
	"s3_path_style":        "media.s3.path_style",
	"s3_prefix":            "media.s3.prefix",
	"s3_public_base_url":   "media.s3.public_base_url",

	// Relay
	"reconcile_interval": "relay.reconcile_interval",
	"sweep_interval":     "relay.sweep_interval",
	"client_send_buffer": "relay.client_send_buffer",
	"ws_inbound_rate":    "relay.inbound_rate",
	"ws_inbound_burst":   "relay.inbound_burst",
	"ws_allowed_origins": "relay.allowed_origins",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path,
// or "" to skip it.
//
//   - HTTP_PORT -> server.port
//   - REDIS_URL -> store.redis_url
//   - S3_BUCKET -> media.s3.bucket
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
