// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

// Package store is the durable mirror of the event registry: a key-value
// collection of models.Event keyed by eventId.
//
// The registry only needs put, get, delete and a full listing for
// reconciliation, so every backend implements exactly that. Deleting an
// absent key is not an error.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/locrelay/internal/config"
	"github.com/tomtom215/locrelay/internal/models"
)

var (
	// ErrNotFound is returned by Get for an unknown eventId.
	ErrNotFound = errors.New("event not found")

	// ErrUnavailable wraps calls rejected by the circuit breaker.
	ErrUnavailable = errors.New("event store unavailable")
)

// Store is the durable event mirror.
type Store interface {
	Put(ctx context.Context, ev *models.Event) error
	Get(ctx context.Context, eventID string) (*models.Event, error)
	Delete(ctx context.Context, eventID string) error
	List(ctx context.Context) ([]models.Event, error)
	Ping(ctx context.Context) error
	Close() error
	// Backend names the implementation for logs and metrics.
	Backend() string
}

// Open connects the backend selected by cfg and wraps it with metrics and,
// when enabled, a circuit breaker.
func Open(ctx context.Context, cfg *config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Backend {
	case "badger":
		s, err = OpenBadger(cfg.BadgerPath)
	case "redis":
		s, err = ConnectRedis(ctx, cfg.RedisURL, cfg.RedisKey)
	case "mongo":
		s, err = ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case "memory":
		s = NewMemory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	return NewGuarded(s, GuardConfig{
		OpTimeout:      cfg.OpTimeout,
		BreakerEnabled: cfg.BreakerEnabled,
		MinRequests:    cfg.BreakerMinRequests,
		FailureRatio:   cfg.BreakerFailureRatio,
		OpenTimeout:    cfg.BreakerTimeout,
	}), nil
}
