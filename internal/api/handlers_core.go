// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package api

import (
	"net/http"

	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/models"
	ws "github.com/tomtom215/locrelay/internal/websocket"
)

// WebSocket upgrades the request and hands the connection to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	if !h.wsHub.Attach(ws.NewClient(h.wsHub, conn)) {
		logging.Warn().Msg("WebSocket connection dropped: hub is not running")
		_ = conn.Close()
	}
}

// Locations returns the current presence snapshot.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	var locations []models.UserLocation
	if h.wsHub != nil {
		locations = h.wsHub.PresenceSnapshot()
	}
	if locations == nil {
		locations = []models.UserLocation{}
	}
	respondSuccess(w, locations, len(locations))
}

// Events returns the active events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	events := h.events.Snapshot()
	if events == nil {
		events = []models.Event{}
	}
	respondSuccess(w, events, len(events))
}
