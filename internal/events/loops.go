// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package events

import (
	"context"
	"time"
)

// RunSweep calls SweepExpired every interval until ctx is done.
func (r *Registry) RunSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := r.SweepExpired(ctx); n > 0 {
				r.log.Debug().Int("expired", n).Msg("Sweep removed expired events")
			}
		}
	}
}

// RunReconcile reconciles once immediately, then every interval until ctx
// is done. A failed pass is logged and retried on the next tick.
func (r *Registry) RunReconcile(ctx context.Context, interval time.Duration) error {
	r.reconcileLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.reconcileLogged(ctx)
		}
	}
}

func (r *Registry) reconcileLogged(ctx context.Context) {
	if err := r.Reconcile(ctx); err != nil && ctx.Err() == nil {
		r.log.Warn().Err(err).Msg("Reconcile failed; keeping current events")
	}
}
