// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/models"
)

const readinessTimeout = 2 * time.Second

// HealthLive returns 200 while the process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady returns 200 when the durable store answers a ping and 503
// otherwise. The relay keeps serving from memory while the store is down,
// so this only tells an orchestrator that durability is degraded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	health := h.healthStatus(r.Context())

	statusCode := http.StatusOK
	if health.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status:   health.Status,
		Data:     health,
		Metadata: models.Metadata{Timestamp: health.Timestamp},
	})
}

func (h *Handler) healthStatus(ctx context.Context) models.HealthStatus {
	health := models.HealthStatus{
		Status:    "ready",
		Checks:    map[string]string{},
		Events:    h.events.Len(),
		Timestamp: time.Now(),
	}
	if h.wsHub != nil {
		health.Clients = h.wsHub.GetClientCount()
		health.Users = len(h.wsHub.PresenceSnapshot())
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
		defer cancel()

		backend := "store_" + h.store.Backend()
		if err := h.store.Ping(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("backend", h.store.Backend()).Msg("Readiness check failed")
			health.Checks[backend] = "unreachable"
			health.Status = "not_ready"
		} else {
			health.Checks[backend] = "ok"
		}
		if br, ok := h.store.(breakerReporter); ok {
			health.Checks["store_breaker"] = br.BreakerState()
		}
	}
	if h.media != nil {
		health.Checks["media_"+h.media.Backend()] = "configured"
	}
	return health
}
