// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the complete process configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Media    MediaConfig    `koanf:"media"`
	Relay    RelayConfig    `koanf:"relay"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT (default 0.0.0.0:3001)
//   - HTTP_TIMEOUT: read/write timeout for plain HTTP requests (default 30s)
//   - PUBLIC_BASE_URL: prefix for locally served media links; empty means
//     links are returned as root-relative paths (/uploads/...)
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	Timeout       time.Duration `koanf:"timeout"`
	PublicBaseURL string        `koanf:"public_base_url"`
	Environment   string        `koanf:"environment"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StoreConfig selects and configures the durable event mirror.
//
// Backends:
//   - badger: embedded key-value store on local disk (default)
//   - redis: one hash per deployment, field = eventId
//   - mongo: one document per event, _id = eventId
//   - memory: no durability; for development and tests
type StoreConfig struct {
	Backend         string        `koanf:"backend"`
	BadgerPath      string        `koanf:"badger_path"`
	RedisURL        string        `koanf:"redis_url"`
	RedisKey        string        `koanf:"redis_key"`
	MongoURI        string        `koanf:"mongo_uri"`
	MongoDatabase   string        `koanf:"mongo_database"`
	MongoCollection string        `koanf:"mongo_collection"`
	OpTimeout       time.Duration `koanf:"op_timeout"`

	// Breaker trips after BreakerMinRequests calls in one interval with at
	// least BreakerFailureRatio failing, then rejects calls for BreakerTimeout.
	BreakerEnabled      bool          `koanf:"breaker_enabled"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
}

// MediaConfig selects where uploaded images are written.
type MediaConfig struct {
	Backend        string   `koanf:"backend"` // local or s3
	Dir            string   `koanf:"dir"`
	MaxUploadBytes int64    `koanf:"max_upload_bytes"`
	S3             S3Config `koanf:"s3"`
}

// S3Config holds S3-compatible object storage settings. Endpoint is only
// needed for non-AWS providers (MinIO, R2); PublicBaseURL is the prefix
// clients use to fetch objects, defaulting to the virtual-hosted AWS URL.
type S3Config struct {
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	PathStyle       bool   `koanf:"path_style"`
	Prefix          string `koanf:"prefix"`
	PublicBaseURL   string `koanf:"public_base_url"`
}

// RelayConfig tunes the hub and the expiry loops.
type RelayConfig struct {
	ReconcileInterval time.Duration `koanf:"reconcile_interval"`
	SweepInterval     time.Duration `koanf:"sweep_interval"`
	ClientSendBuffer  int           `koanf:"client_send_buffer"`
	InboundRate       float64       `koanf:"inbound_rate"` // messages per second per connection
	InboundBurst      int           `koanf:"inbound_burst"`
	AllowedOrigins    []string      `koanf:"allowed_origins"`
}

// SecurityConfig holds HTTP-facing limits.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// String summarizes the configuration without secrets, for the startup log.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s store=%s media=%s reconcile=%s sweep=%s",
		c.Server.Addr(), c.Store.Backend, c.Media.Backend, c.Relay.ReconcileInterval, c.Relay.SweepInterval)
}
