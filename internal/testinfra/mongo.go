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

// DefaultMongoImage is the MongoDB image used by NewMongoContainer.
const DefaultMongoImage = "mongo:7"

// MongoContainer is a running single-node MongoDB.
type MongoContainer struct {
	testcontainers.Container
	URI string
}

// NewMongoContainer starts MongoDB and waits for its listening port.
func NewMongoContainer(ctx context.Context) (*MongoContainer, error) {
	container, addr, err := startService(ctx, serviceSpec{
		image: DefaultMongoImage,
		port:  "27017",
		waitFor: wait.ForAll(
			wait.ForListeningPort("27017/tcp"),
			wait.ForLog("Waiting for connections"),
		),
		timeout: 90 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &MongoContainer{Container: container, URI: "mongodb://" + addr}, nil
}
