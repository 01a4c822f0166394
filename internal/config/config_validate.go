// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package config

import (
	"fmt"
	"time"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateStore,
		c.validateMedia,
		c.validateRelay,
		c.validateRateLimits,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.PublicBaseURL != "" {
		if err := validateHTTPURL(c.Server.PublicBaseURL, "PUBLIC_BASE_URL"); err != nil {
			return err
		}
	}
	return nil
}

var validStoreBackends = map[string]bool{
	"badger": true,
	"redis":  true,
	"mongo":  true,
	"memory": true,
}

func (c *Config) validateStore() error {
	s := c.Store
	if !validStoreBackends[s.Backend] {
		return fmt.Errorf("STORE_BACKEND must be one of: badger, redis, mongo, memory")
	}

	switch s.Backend {
	case "badger":
		if s.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when STORE_BACKEND=badger")
		}
	case "redis":
		if s.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
		if err := validateSchemeURL(s.RedisURL, "REDIS_URL", "redis", "rediss", "unix"); err != nil {
			return err
		}
		if s.RedisKey == "" {
			return fmt.Errorf("REDIS_KEY must not be empty")
		}
	case "mongo":
		if s.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_BACKEND=mongo")
		}
		if err := validateSchemeURL(s.MongoURI, "MONGO_URI", "mongodb", "mongodb+srv"); err != nil {
			return err
		}
		if s.MongoDatabase == "" || s.MongoCollection == "" {
			return fmt.Errorf("MONGO_DATABASE and MONGO_COLLECTION must not be empty")
		}
	}

	if s.OpTimeout <= 0 {
		return fmt.Errorf("STORE_OP_TIMEOUT must be positive")
	}
	if s.BreakerEnabled {
		if s.BreakerFailureRatio <= 0 || s.BreakerFailureRatio > 1 {
			return fmt.Errorf("STORE_BREAKER_FAILURE_RATIO must be in (0, 1]")
		}
		if s.BreakerTimeout <= 0 {
			return fmt.Errorf("STORE_BREAKER_TIMEOUT must be positive")
		}
	}
	return nil
}

func (c *Config) validateMedia() error {
	m := c.Media
	if m.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	switch m.Backend {
	case "local":
		if m.Dir == "" {
			return fmt.Errorf("MEDIA_DIR is required when MEDIA_BACKEND=local")
		}
	case "s3":
		if m.S3.Bucket == "" || m.S3.Region == "" {
			return fmt.Errorf("S3_BUCKET and S3_REGION are required when MEDIA_BACKEND=s3")
		}
		if (m.S3.AccessKeyID == "") != (m.S3.SecretAccessKey == "") {
			return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
		if m.S3.Endpoint != "" {
			if err := validateHTTPURL(m.S3.Endpoint, "S3_ENDPOINT"); err != nil {
				return err
			}
		}
		if m.S3.PublicBaseURL != "" {
			if err := validateSchemeURL(m.S3.PublicBaseURL, "S3_PUBLIC_BASE_URL", "http", "https"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be one of: local, s3")
	}
	return nil
}

const (
	minLoopInterval = 100 * time.Millisecond
	maxLoopInterval = time.Hour
)

func (c *Config) validateRelay() error {
	r := c.Relay
	if r.ReconcileInterval < minLoopInterval || r.ReconcileInterval > maxLoopInterval {
		return fmt.Errorf("RECONCILE_INTERVAL must be between %v and %v", minLoopInterval, maxLoopInterval)
	}
	if r.SweepInterval < minLoopInterval || r.SweepInterval > maxLoopInterval {
		return fmt.Errorf("SWEEP_INTERVAL must be between %v and %v", minLoopInterval, maxLoopInterval)
	}
	if r.ClientSendBuffer < 1 {
		return fmt.Errorf("CLIENT_SEND_BUFFER must be at least 1")
	}
	if r.InboundRate < 0 || (r.InboundRate > 0 && r.InboundBurst < 1) {
		return fmt.Errorf("WS_INBOUND_RATE must be >= 0 and WS_INBOUND_BURST >= 1 when rate limiting is on")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
