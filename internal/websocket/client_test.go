// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/locrelay/internal/events"
	"github.com/tomtom215/locrelay/internal/models"
	"github.com/tomtom215/locrelay/internal/presence"
	"github.com/tomtom215/locrelay/internal/store"
)

// relay is a hub wired to a real event registry behind an httptest server.
type relay struct {
	hub    *Hub
	events *events.Registry
	server *httptest.Server
}

func setupRelay(t *testing.T) *relay {
	t.Helper()
	reg := events.NewRegistry(store.NewMemory())
	hub := NewHub(presence.NewRegistry(), reg, DefaultConfig())
	reg.SetNotifier(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	waitUntilRunning(t, hub)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if !hub.Attach(NewClient(hub, conn)) {
			_ = conn.Close()
		}
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
		reg.Close()
	})
	return &relay{hub: hub, events: reg, server: server}
}

// dialWebSocket connects and drains the two welcome frames.
func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	readWS(t, conn, models.MessageTypeUpdateLocation)
	readWS(t, conn, models.MessageTypeUpdateEventLocations)
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readWS reads the next frame and fails unless it has the wanted type.
func readWS(t *testing.T, conn *websocket.Conn, wantType string) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read (want %s): %v", wantType, err)
	}
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	if f.Type != wantType {
		t.Fatalf("frame type = %q (%s), want %q", f.Type, f.Data, wantType)
	}
	return f
}

func decodeEvents(t *testing.T, f frame) []models.Event {
	t.Helper()
	var evs []models.Event
	if err := json.Unmarshal(f.Data, &evs); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	return evs
}

func TestRelay_LocationScenario(t *testing.T) {
	r := setupRelay(t)
	alice := dialWebSocket(t, r.server)
	watcher := dialWebSocket(t, r.server)

	sendWS(t, alice, models.MessageTypeUpdateLocation, map[string]interface{}{
		"username": "alice", "latitude": 52.5, "longitude": 13.4, "gpsEnabled": true,
	})
	for _, conn := range []*websocket.Conn{alice, watcher} {
		locs := decodeLocations(t, readWS(t, conn, models.MessageTypeUpdateLocation))
		if len(locs) != 1 || locs[0].Username != "alice" || locs[0].Latitude != 52.5 || locs[0].Longitude != 13.4 {
			t.Fatalf("snapshot = %+v, want alice at 52.5,13.4", locs)
		}
	}

	sendWS(t, alice, models.MessageTypeUpdateLocation, map[string]interface{}{
		"username": "alice", "gpsEnabled": false,
	})
	for _, conn := range []*websocket.Conn{alice, watcher} {
		if locs := decodeLocations(t, readWS(t, conn, models.MessageTypeUpdateLocation)); len(locs) != 0 {
			t.Fatalf("snapshot = %+v, want []", locs)
		}
	}
}

func TestRelay_DisconnectBroadcastsRemoval(t *testing.T) {
	r := setupRelay(t)
	alice := dialWebSocket(t, r.server)
	watcher := dialWebSocket(t, r.server)

	sendWS(t, alice, models.MessageTypeUpdateLocation, map[string]interface{}{
		"username": "alice", "latitude": 1.0, "longitude": 2.0, "gpsEnabled": true,
	})
	readWS(t, watcher, models.MessageTypeUpdateLocation)

	_ = alice.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = alice.Close()

	if locs := decodeLocations(t, readWS(t, watcher, models.MessageTypeUpdateLocation)); len(locs) != 0 {
		t.Errorf("snapshot after disconnect = %+v, want []", locs)
	}
}

func TestRelay_ConfirmPurchaseLifecycle(t *testing.T) {
	r := setupRelay(t)
	conn := dialWebSocket(t, r.server)

	sendWS(t, conn, models.MessageTypeConfirmPurchase, map[string]interface{}{
		"eventId": "e1", "latitude": 52.5, "longitude": 13.4,
		"eventname": "Launch", "eventDescription": "rooftop", "duration": 300,
	})

	evs := decodeEvents(t, readWS(t, conn, models.MessageTypeUpdateEventLocations))
	if len(evs) != 1 || evs[0].EventID != "e1" || evs[0].EventName != "Launch" {
		t.Fatalf("snapshot = %+v, want [e1]", evs)
	}
	if evs[0].CreatedAt.IsZero() {
		t.Error("createdAt not assigned")
	}

	f := readWS(t, conn, models.MessageTypeEventEnded)
	var ended models.EventEnded
	if err := json.Unmarshal(f.Data, &ended); err != nil || ended.EventID != "e1" {
		t.Fatalf("eventEnded = %s, want e1", f.Data)
	}
	if evs := decodeEvents(t, readWS(t, conn, models.MessageTypeUpdateEventLocations)); len(evs) != 0 {
		t.Errorf("snapshot after expiry = %+v, want []", evs)
	}

	// A late sweep must not produce a second eventEnded.
	if n := r.events.SweepExpired(context.Background()); n != 0 {
		t.Errorf("sweep after timer removed %d events", n)
	}
}

func TestRelay_InvalidPurchaseGetsError(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
	}{
		{"non-numeric latitude", map[string]interface{}{"eventId": "e1", "latitude": "abc", "longitude": 1.0, "duration": 1000}},
		{"null eventId", map[string]interface{}{"eventId": nil, "latitude": 1.0, "longitude": 1.0, "duration": 1000}},
		{"missing duration", map[string]interface{}{"eventId": "e1", "latitude": 1.0, "longitude": 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRelay(t)
			conn := dialWebSocket(t, r.server)

			sendWS(t, conn, models.MessageTypeConfirmPurchase, tt.data)
			f := readWS(t, conn, models.MessageTypeError)

			var msgErr models.MessageError
			if err := json.Unmarshal(f.Data, &msgErr); err != nil {
				t.Fatal(err)
			}
			if msgErr.Code != "VALIDATION_ERROR" {
				t.Errorf("error code = %q, want VALIDATION_ERROR", msgErr.Code)
			}
			if r.events.Len() != 0 {
				t.Errorf("registry holds %d events after rejection", r.events.Len())
			}
		})
	}
}

func TestRelay_PingPongAndJunk(t *testing.T) {
	r := setupRelay(t)
	conn := dialWebSocket(t, r.server)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	sendWS(t, conn, "teleport", map[string]string{"to": "moon"})
	sendWS(t, conn, models.MessageTypeUpdateLocation, map[string]interface{}{"latitude": 1.0})
	sendWS(t, conn, models.MessageTypePing, nil)

	// The junk frames are dropped and the connection survives to answer.
	readWS(t, conn, models.MessageTypePong)
}

func TestClient_RateLimit(t *testing.T) {
	hub := NewHub(presence.NewRegistry(), &staticEvents{}, Config{SendBuffer: 16, InboundRate: 1, InboundBurst: 2})
	c := createTestClient(hub)

	allowed := 0
	for i := 0; i < 5; i++ {
		if c.limiter.Allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("allowed %d messages in a burst, want 2", allowed)
	}

	unlimited := createTestClient(NewHub(presence.NewRegistry(), &staticEvents{}, Config{}))
	for i := 0; i < 100; i++ {
		if !unlimited.limiter.Allow() {
			t.Fatal("zero rate should disable limiting")
		}
	}
}

func TestConstants(t *testing.T) {
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
	if writeWait <= 0 || maxMessageSize <= 0 {
		t.Error("write wait and message size must be positive")
	}
}
