// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/metrics"
	"github.com/tomtom215/locrelay/internal/models"
)

// GuardConfig controls the per-operation timeout and circuit breaker that
// NewGuarded puts in front of a backend.
type GuardConfig struct {
	// OpTimeout bounds every call. Zero disables the per-call deadline.
	OpTimeout time.Duration

	BreakerEnabled bool
	// MinRequests is the number of calls in a window before the
	// failure ratio is considered.
	MinRequests  uint32
	FailureRatio float64
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// Guarded decorates a Store with timeouts, metrics and an optional
// circuit breaker. ErrNotFound counts as a successful call.
//
// The breaker uses real time for its interval and timeout, so tests that
// exercise tripping drive it with failures rather than a fake clock.
type Guarded struct {
	inner   Store
	cfg     GuardConfig
	cb      *gobreaker.CircuitBreaker[any]
	cbName  string
	backend string
}

// NewGuarded wraps inner.
func NewGuarded(inner Store, cfg GuardConfig) *Guarded {
	g := &Guarded{
		inner:   inner,
		cfg:     cfg,
		backend: inner.Backend(),
		cbName:  "store-" + inner.Backend(),
	}
	if !cfg.BreakerEnabled {
		return g
	}

	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	ratio := cfg.FailureRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.6
	}

	metrics.CircuitBreakerState.WithLabelValues(g.cbName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(g.cbName).Set(0)

	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        g.cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= ratio {
				logging.Warn().
					Str("breaker", g.cbName).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening store circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Store circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
	return g
}

// Inner returns the wrapped backend.
func (g *Guarded) Inner() Store { return g.inner }

// BreakerState reports the breaker state, or "disabled".
func (g *Guarded) BreakerState() string {
	if g.cb == nil {
		return "disabled"
	}
	return g.cb.State().String()
}

func (g *Guarded) execute(ctx context.Context, op string, fn func(ctx context.Context) (any, error)) (any, error) {
	if g.cfg.OpTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.OpTimeout)
		defer cancel()
	}

	start := time.Now()
	var (
		result any
		err    error
	)
	if g.cb == nil {
		result, err = fn(ctx)
	} else {
		result, err = g.cb.Execute(func() (any, error) { return fn(ctx) })
		g.recordBreaker(err)
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}

	recorded := err
	if errors.Is(err, ErrNotFound) {
		recorded = nil
	}
	metrics.RecordStoreOp(g.backend, op, time.Since(start), recorded)
	return result, err
}

func (g *Guarded) recordBreaker(err error) {
	switch {
	case err == nil || errors.Is(err, ErrNotFound):
		metrics.CircuitBreakerRequests.WithLabelValues(g.cbName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(g.cbName).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(g.cbName, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(g.cbName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(g.cbName).Set(float64(g.cb.Counts().ConsecutiveFailures))
	}
}

func (g *Guarded) Put(ctx context.Context, ev *models.Event) error {
	_, err := g.execute(ctx, "put", func(ctx context.Context) (any, error) {
		return nil, g.inner.Put(ctx, ev)
	})
	return err
}

func (g *Guarded) Get(ctx context.Context, eventID string) (*models.Event, error) {
	res, err := g.execute(ctx, "get", func(ctx context.Context) (any, error) {
		return g.inner.Get(ctx, eventID)
	})
	if err != nil {
		return nil, err
	}
	ev, ok := res.(*models.Event)
	if !ok {
		return nil, fmt.Errorf("store guard: unexpected result type %T", res)
	}
	return ev, nil
}

func (g *Guarded) Delete(ctx context.Context, eventID string) error {
	_, err := g.execute(ctx, "delete", func(ctx context.Context) (any, error) {
		return nil, g.inner.Delete(ctx, eventID)
	})
	return err
}

func (g *Guarded) List(ctx context.Context) ([]models.Event, error) {
	res, err := g.execute(ctx, "list", func(ctx context.Context) (any, error) {
		return g.inner.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	events, ok := res.([]models.Event)
	if !ok {
		return nil, fmt.Errorf("store guard: unexpected result type %T", res)
	}
	return events, nil
}

// Ping bypasses the breaker so readiness reflects the backend itself.
func (g *Guarded) Ping(ctx context.Context) error {
	if g.cfg.OpTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.OpTimeout)
		defer cancel()
	}
	return g.inner.Ping(ctx)
}

func (g *Guarded) Close() error { return g.inner.Close() }

func (g *Guarded) Backend() string { return g.backend }

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
