// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "HTTP_PORT"},
		{name: "bad public url", mutate: func(c *Config) { c.Server.PublicBaseURL = "ftp://x" }, wantErr: "PUBLIC_BASE_URL"},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Backend = "sqlite" }, wantErr: "STORE_BACKEND"},
		{name: "redis without url", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantErr: "REDIS_URL"},
		{name: "redis wrong scheme", mutate: func(c *Config) {
			c.Store.Backend = "redis"
			c.Store.RedisURL = "http://localhost:6379"
		}, wantErr: "REDIS_URL"},
		{name: "redis ok", mutate: func(c *Config) {
			c.Store.Backend = "redis"
			c.Store.RedisURL = "rediss://user:pw@cache:6380/0"
		}},
		{name: "mongo without uri", mutate: func(c *Config) { c.Store.Backend = "mongo" }, wantErr: "MONGO_URI"},
		{name: "mongo srv ok", mutate: func(c *Config) {
			c.Store.Backend = "mongo"
			c.Store.MongoURI = "mongodb+srv://cluster0.example.net"
		}},
		{name: "memory ok", mutate: func(c *Config) { c.Store.Backend = "memory" }},
		{name: "breaker ratio", mutate: func(c *Config) { c.Store.BreakerFailureRatio = 1.5 }, wantErr: "FAILURE_RATIO"},
		{name: "breaker off ignores ratio", mutate: func(c *Config) {
			c.Store.BreakerEnabled = false
			c.Store.BreakerFailureRatio = 0
		}},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Media.Backend = "s3" }, wantErr: "S3_BUCKET"},
		{name: "s3 half credentials", mutate: func(c *Config) {
			c.Media.Backend = "s3"
			c.Media.S3.Bucket = "b"
			c.Media.S3.AccessKeyID = "AKIA"
		}, wantErr: "S3_SECRET_ACCESS_KEY"},
		{name: "unknown media", mutate: func(c *Config) { c.Media.Backend = "gcs" }, wantErr: "MEDIA_BACKEND"},
		{name: "zero upload limit", mutate: func(c *Config) { c.Media.MaxUploadBytes = 0 }, wantErr: "MAX_UPLOAD_BYTES"},
		{name: "sweep too fast", mutate: func(c *Config) { c.Relay.SweepInterval = time.Millisecond }, wantErr: "SWEEP_INTERVAL"},
		{name: "send buffer zero", mutate: func(c *Config) { c.Relay.ClientSendBuffer = 0 }, wantErr: "CLIENT_SEND_BUFFER"},
		{name: "rate limit out of range", mutate: func(c *Config) { c.Security.RateLimitReqs = 0 }, wantErr: "RATE_LIMIT_REQUESTS"},
		{name: "rate limit disabled skips checks", mutate: func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 3001}
	if got := s.Addr(); got != "127.0.0.1:3001" {
		t.Errorf("Addr() = %q", got)
	}
}
