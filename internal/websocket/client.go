// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package websocket

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/locrelay/internal/events"
	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/metrics"
	"github.com/tomtom215/locrelay/internal/models"
	"github.com/tomtom215/locrelay/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// createTimeout bounds a confirmPurchase, including its store write.
	createTimeout = 10 * time.Second
)

// clientIDCounter hands out monotonically increasing client ids, which
// also give broadcasts a stable order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	log     zerolog.Logger
}

// inbound is a client frame with its payload left undecoded until the
// type is known.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewClient creates a client for conn with the hub's buffer and rate limits.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := clientIDCounter.Add(1)
	l := logging.With().
		Str("component", "websocket").
		Uint64("client_id", id).
		Str("conn_id", logging.GenerateConnID())
	if conn != nil {
		l = l.Str("remote", conn.RemoteAddr().String())
	}
	return &Client{
		id:      id,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.cfg.SendBuffer),
		limiter: hub.newLimiter(),
		log:     l.Logger(),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Attach registers the client with a running hub and starts its pumps. It
// returns false, leaving the connection to the caller, when the hub is not
// running.
func (h *Hub) Attach(c *Client) bool {
	select {
	case h.Register <- c:
		c.Start()
		return true
	case <-h.done():
		return false
	}
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done():
			c.hub.handleUnregister(c)
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		c.handle(raw)
	}
}

// handle dispatches one inbound frame. Bad frames are counted and dropped;
// they never close the connection.
func (c *Client) handle(raw []byte) {
	if !c.limiter.Allow() {
		metrics.WSMessagesDropped.WithLabelValues("rate_limited").Inc()
		return
	}

	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		metrics.WSMessagesDropped.WithLabelValues("malformed").Inc()
		c.log.Debug().Err(err).Msg("Dropping undecodable frame")
		return
	}

	switch msg.Type {
	case models.MessageTypeUpdateLocation:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		var update models.LocationUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			metrics.WSMessagesDropped.WithLabelValues("malformed").Inc()
			return
		}
		c.hub.HandleLocationUpdate(c, &update)

	case models.MessageTypeConfirmPurchase:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		c.confirmPurchase(msg.Data)

	case models.MessageTypePing:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		c.hub.sendTo(c, models.MessageTypePong, nil)

	default:
		metrics.WSMessagesDropped.WithLabelValues("unknown_type").Inc()
		c.log.Debug().Str("type", msg.Type).Msg("Dropping frame of unknown type")
	}
}

func (c *Client) confirmPurchase(data json.RawMessage) {
	var req models.EventRequest
	if err := json.Unmarshal(data, &req); err != nil {
		metrics.WSMessagesDropped.WithLabelValues("malformed").Inc()
		metrics.EventsRejected.WithLabelValues("websocket").Inc()
		c.hub.sendTo(c, models.MessageTypeError, models.MessageError{
			Code:    validation.CodeValidation,
			Message: "confirmPurchase payload is not valid JSON",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), createTimeout)
	defer cancel()

	if _, err := c.hub.events.Create(ctx, &req); err != nil {
		metrics.EventsRejected.WithLabelValues("websocket").Inc()
		code := "INTERNAL_ERROR"
		if errors.Is(err, events.ErrInvalidEvent) {
			code = validation.CodeValidation
			metrics.WSMessagesDropped.WithLabelValues("invalid_event").Inc()
		}
		c.log.Info().Err(err).Str("event_id", req.EventID).Msg("confirmPurchase rejected")
		c.hub.sendTo(c, models.MessageTypeError, models.MessageError{Code: code, Message: err.Error()})
	}
}

// writePump pumps queued frames to the websocket connection and keeps it
// alive with pings. A closed queue means the hub dropped the client.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug().Err(err).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
