// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Store.Backend = %q, want badger", cfg.Store.Backend)
	}
	if cfg.Store.MongoCollection != "eventLocations" {
		t.Errorf("Store.MongoCollection = %q, want eventLocations", cfg.Store.MongoCollection)
	}
	if cfg.Media.Dir != "uploads" {
		t.Errorf("Media.Dir = %q, want uploads", cfg.Media.Dir)
	}
	if cfg.Relay.ReconcileInterval != 10*time.Second || cfg.Relay.SweepInterval != 10*time.Second {
		t.Errorf("relay intervals = %v/%v, want 10s/10s", cfg.Relay.ReconcileInterval, cfg.Relay.SweepInterval)
	}
	if cfg.Relay.ClientSendBuffer != 256 {
		t.Errorf("Relay.ClientSendBuffer = %d, want 256", cfg.Relay.ClientSendBuffer)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"PORT", "server.port"},
		{"STORE_BACKEND", "store.backend"},
		{"REDIS_URL", "store.redis_url"},
		{"MONGO_URI", "store.mongo_uri"},
		{"S3_BUCKET", "media.s3.bucket"},
		{"UPLOAD_DIR", "media.dir"},
		{"SWEEP_INTERVAL", "relay.sweep_interval"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
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
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})

	t.Run("config.yaml in working directory", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if err := os.WriteFile("config.yaml", []byte("server: {}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Remove("config.yaml") })

		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH takes precedence", func(t *testing.T) {
		custom := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(custom, []byte("server: {}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(ConfigPathEnvVar, custom)

		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})

	t.Run("CONFIG_PATH pointing nowhere falls back", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("SWEEP_INTERVAL", "2s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Relay.SweepInterval != 2*time.Second {
		t.Errorf("Relay.SweepInterval = %v, want 2s", cfg.Relay.SweepInterval)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// untouched defaults survive
	if cfg.Server.Host != "0.0.0.0" || cfg.Relay.ReconcileInterval != 10*time.Second {
		t.Errorf("defaults lost: host=%q reconcile=%v", cfg.Server.Host, cfg.Relay.ReconcileInterval)
	}
}

func TestLoadWithKoanfConfigFileAndEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	content := `
server:
  port: 8888
  public_base_url: "https://relay.example.com"
store:
  backend: mongo
  mongo_uri: "mongodb://localhost:27017"
media:
  backend: s3
  s3:
    bucket: "event-images"
    region: "eu-central-1"
logging:
  level: warn
`
	path := filepath.Join(tmpDir, "locrelay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.PublicBaseURL != "https://relay.example.com" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoCollection != "eventLocations" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Media.Backend != "s3" || cfg.Media.S3.Bucket != "event-images" {
		t.Errorf("Media = %+v", cfg.Media)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env beats file)", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("STORE_BACKEND", "postgres")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() accepted an unknown store backend")
	}
}
