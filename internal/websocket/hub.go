// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/metrics"
	"github.com/tomtom215/locrelay/internal/models"
	"github.com/tomtom215/locrelay/internal/presence"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// EventRegistry is the part of *events.Registry the hub uses.
type EventRegistry interface {
	Create(ctx context.Context, req *models.EventRequest) (*models.Event, error)
	Snapshot() []models.Event
}

// Config holds per-client limits.
type Config struct {
	// SendBuffer is the number of outbound frames a client may have queued
	// before it is evicted.
	SendBuffer int
	// InboundRate and InboundBurst bound the messages a client may send.
	// A rate of zero disables the limit.
	InboundRate  float64
	InboundBurst int
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{SendBuffer: 256, InboundRate: 20, InboundBurst: 40}
}

// Hub owns the live connections, the connection<->username bindings and
// the presence registry, and fans registry snapshots out to every client.
//
// Lock order is stateMu, then the registries' own locks, then mu.
// stateMu is held from the moment a registry is mutated until its
// snapshot has been queued on every client, so all clients observe
// snapshots in the same order and a snapshot never overtakes a later one.
type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	stateMu  sync.Mutex
	presence *presence.Registry
	bindings *presence.Bindings
	events   EventRegistry

	cfg Config

	runMu   sync.Mutex
	stopped chan struct{}
}

// NewHub creates a hub around the presence registry and event registry.
// The hub is not accepting clients until RunWithContext is running.
func NewHub(pres *presence.Registry, evs EventRegistry, cfg Config) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultConfig().SendBuffer
	}
	stopped := make(chan struct{})
	close(stopped)
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		presence:   pres,
		bindings:   presence.NewBindings(),
		events:     evs,
		cfg:        cfg,
		stopped:    stopped,
	}
}

// done is closed while the hub loop is not running.
func (h *Hub) done() <-chan struct{} {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	return h.stopped
}

// RunWithContext processes client registration until ctx is canceled,
// then closes every client and returns ctx.Err(). It can be restarted by
// a supervisor.
//
// Lifecycle events are checked before blocking so a burst of registrations
// is drained before shutdown is considered again.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.runMu.Lock()
	stopped := make(chan struct{})
	h.stopped = stopped
	h.runMu.Unlock()
	defer close(stopped)

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.handleRegister(client)
			continue
		case client := <-h.Unregister:
			h.handleUnregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.handleRegister(client)
		case client := <-h.Unregister:
			h.handleUnregister(client)
		}
	}
}

// handleRegister adds the client and sends it the current presence and
// event snapshots. Other clients see nothing.
func (h *Hub) handleRegister(c *Client) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	c.log.Info().Int("total_clients", total).Msg("websocket client connected")

	h.sendTo(c, models.MessageTypeUpdateLocation, h.presence.Snapshot())
	h.sendTo(c, models.MessageTypeUpdateEventLocations, h.events.Snapshot())
}

// handleUnregister drops the client and, if it still owned a username,
// removes that user's presence and broadcasts the result. A username that
// was rebound to a newer connection is left alone. It runs for clients
// that were already evicted too, since their binding survives eviction.
func (h *Hub) handleUnregister(c *Client) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(total))

	username, bound := h.bindings.Unbind(c.id)
	if bound && h.presence.Remove(username) {
		metrics.PresenceEntries.Set(float64(h.presence.Len()))
		h.broadcastLocked(models.MessageTypeUpdateLocation, h.presence.Snapshot())
	}

	c.log.Info().Int("total_clients", total).Str("username", username).Msg("websocket client disconnected")
}

// HandleLocationUpdate binds the client to update.Username and applies the
// update to the presence registry. A hidden update (gpsEnabled false or
// absent) removes the user. Either way the full snapshot is broadcast.
func (h *Hub) HandleLocationUpdate(c *Client, update *models.LocationUpdate) {
	if update.Username == "" {
		metrics.WSMessagesDropped.WithLabelValues("missing_username").Inc()
		c.log.Debug().Msg("Dropping location update without username")
		return
	}

	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	h.bindings.Bind(c.id, update.Username)
	if update.Visible() {
		h.presence.Upsert(update)
	} else {
		h.presence.Remove(update.Username)
	}
	metrics.PresenceEntries.Set(float64(h.presence.Len()))
	h.broadcastLocked(models.MessageTypeUpdateLocation, h.presence.Snapshot())
}

// EventsChanged broadcasts the current event snapshot.
func (h *Hub) EventsChanged() {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.broadcastLocked(models.MessageTypeUpdateEventLocations, h.events.Snapshot())
}

// EventEnded tells every client that eventID is over.
func (h *Hub) EventEnded(eventID string) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.broadcastLocked(models.MessageTypeEventEnded, models.EventEnded{EventID: eventID})
}

// broadcastLocked encodes the message once and queues it on every client
// in id order. A client whose buffer is full is evicted instead of
// waited on. Callers hold stateMu.
func (h *Hub) broadcastLocked(msgType string, data interface{}) {
	frame, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		logging.Error().Err(err).Str("message_type", msgType).Msg("failed to encode broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		select {
		case client.send <- frame:
		default:
			h.evictLocked(client)
		}
	}
	metrics.Broadcasts.WithLabelValues(msgType).Inc()
}

// sendTo queues a frame for one client if it is still registered.
func (h *Hub) sendTo(c *Client, msgType string, data interface{}) {
	frame, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		logging.Error().Err(err).Str("message_type", msgType).Msg("failed to encode message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
		h.evictLocked(c)
	}
}

// evictLocked closes a slow client's queue; its write pump then closes
// the connection and the read pump unregisters it. Callers hold mu.
func (h *Hub) evictLocked(c *Client) {
	close(c.send)
	delete(h.clients, c)
	metrics.ClientsEvicted.Inc()
	c.log.Warn().Int("buffer", cap(c.send)).Msg("evicting websocket client with full send buffer")
}

func (h *Hub) newLimiter() *rate.Limiter {
	if h.cfg.InboundRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := h.cfg.InboundBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(h.cfg.InboundRate), burst)
}

// logGracefulShutdown closes every client and logs the reason. Context
// cancellation is expected here, so it is not logged as an error.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every client in id order. Their read pumps run
// the disconnect cleanup once the hub loop has stopped.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PresenceSnapshot returns the current presence entries.
func (h *Hub) PresenceSnapshot() []models.UserLocation {
	return h.presence.Snapshot()
}
