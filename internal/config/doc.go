// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package config loads Locrelay configuration with Koanf v2.

Sources are layered, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/locrelay/config.yaml
 3. Environment variables, mapped explicitly by envTransformFunc so that
    unrelated variables never leak into the configuration

Example config.yaml:

	server:
	  port: 3001
	  public_base_url: "https://relay.example.com"
	store:
	  backend: redis
	  redis_url: "redis://localhost:6379/0"
	media:
	  backend: s3
	  s3:
	    bucket: "event-images"
	    region: "eu-central-1"
	relay:
	  reconcile_interval: 10s
	  sweep_interval: 10s

The same settings through the environment:

	HTTP_PORT=3001 STORE_BACKEND=redis REDIS_URL=redis://localhost:6379/0 \
	MEDIA_BACKEND=s3 S3_BUCKET=event-images S3_REGION=eu-central-1 ./locrelay

Config is immutable after LoadWithKoanf returns and safe for concurrent reads.
*/
package config
