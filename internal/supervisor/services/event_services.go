// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package services

import (
	"context"
	"time"
)

// Default intervals when none are configured.
const (
	DefaultSweepInterval     = 10 * time.Second
	DefaultReconcileInterval = 10 * time.Second
)

// EventSweeper is satisfied by *events.Registry.
type EventSweeper interface {
	RunSweep(ctx context.Context, interval time.Duration) error
}

// EventReconciler is satisfied by *events.Registry.
type EventReconciler interface {
	RunReconcile(ctx context.Context, interval time.Duration) error
}

// EventSweepService removes expired events on a fixed interval, catching
// any whose timer was lost.
type EventSweepService struct {
	registry EventSweeper
	interval time.Duration
	name     string
}

func NewEventSweepService(registry EventSweeper, interval time.Duration) *EventSweepService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &EventSweepService{
		registry: registry,
		interval: interval,
		name:     "event-sweep",
	}
}

// Serve implements suture.Service.
func (s *EventSweepService) Serve(ctx context.Context) error {
	return s.registry.RunSweep(ctx, s.interval)
}

func (s *EventSweepService) String() string {
	return s.name
}

// EventReconcileService reloads the event registry from the durable store
// at start and then on every interval.
type EventReconcileService struct {
	registry EventReconciler
	interval time.Duration
	name     string
}

func NewEventReconcileService(registry EventReconciler, interval time.Duration) *EventReconcileService {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &EventReconcileService{
		registry: registry,
		interval: interval,
		name:     "event-reconcile",
	}
}

// Serve implements suture.Service. A failed reconcile is logged by the
// registry and retried on the next tick; only cancellation ends the loop.
func (s *EventReconcileService) Serve(ctx context.Context) error {
	return s.registry.RunReconcile(ctx, s.interval)
}

func (s *EventReconcileService) String() string {
	return s.name
}
