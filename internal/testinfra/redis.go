// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

//go:build integration

package testinfra

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultRedisImage is the Redis image used by NewRedisContainer.
const DefaultRedisImage = "redis:7-alpine"

// RedisContainer is a running Redis with a ready-to-use URL.
type RedisContainer struct {
	testcontainers.Container
	URL string
}

// NewRedisContainer starts Redis and waits for it to accept connections.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	container, addr, err := startService(ctx, serviceSpec{
		image:   DefaultRedisImage,
		port:    "6379",
		waitFor: wait.ForLog("Ready to accept connections"),
		timeout: 60 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &RedisContainer{Container: container, URL: "redis://" + addr + "/0"}, nil
}
