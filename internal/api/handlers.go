// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/locrelay/internal/config"
	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/media"
	"github.com/tomtom215/locrelay/internal/models"
	ws "github.com/tomtom215/locrelay/internal/websocket"
)

// EventService is the part of *events.Registry the handlers use.
type EventService interface {
	Create(ctx context.Context, req *models.EventRequest) (*models.Event, error)
	Snapshot() []models.Event
	Len() int
}

// HealthChecker reports on the durable store.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Backend() string
}

// breakerReporter is implemented by *store.Guarded.
type breakerReporter interface {
	BreakerState() string
}

// Handler holds the dependencies of every HTTP endpoint.
type Handler struct {
	config    *config.Config
	wsHub     *ws.Hub
	events    EventService
	store     HealthChecker
	media     media.Store
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a handler. store may be nil, in which case readiness
// only reflects the hub.
func NewHandler(cfg *config.Config, hub *ws.Hub, evs EventService, st HealthChecker, ms media.Store) *Handler {
	return &Handler{
		config:    cfg,
		wsHub:     hub,
		events:    evs,
		store:     st,
		media:     ms,
		startTime: time.Now(),
		now:       time.Now,
	}
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts any origin when relay.allowed_origins holds
// "*". Otherwise the Origin header must be present and listed.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	if h.config == nil {
		return true
	}

	origin := r.Header.Get("Origin")
	for _, allowed := range h.config.Relay.AllowedOrigins {
		if allowed == "*" {
			return true
		}
		if origin != "" && allowed == origin {
			return true
		}
	}

	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
	} else {
		logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	}
	return false
}
