// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package websocket is the broadcast hub: it owns every live connection and
pushes presence and event snapshots to all of them.

Key Components:

  - Hub: client set, connection<->username bindings, presence registry
  - Client: one connection with a read pump and a write pump
  - Message: the {"type", "data"} envelope used in both directions

Architecture:

	            ┌───────────────┐   EventsChanged / EventEnded
	            │      Hub      │ ◄───────────────────────── events.Registry
	            └───────┬───────┘
	                    │ one encoded frame, queued per client
	     ┌──────────────┼──────────────┐
	     │              │              │
	 Client 1       Client 2       Client 3
	 send chan      send chan      send chan

Every broadcast is a full snapshot, encoded once and queued on each
client's buffered send channel without blocking. A client whose buffer is
full is evicted: its channel is closed, the write pump sends a close frame
and the read pump unregisters it. One slow client therefore never delays
the others.

Message Types:

Client to server:

  - updateLocation: LocationUpdate; binds the connection to the username
  - confirmPurchase: EventRequest; creates an event
  - ping: answered with pong

Server to client:

  - updateLocation: []UserLocation, full presence snapshot
  - updateEventLocations: []Event, full event snapshot
  - eventEnded: {"eventId"} when an event expires
  - pong
  - error: {"code","message"} for a rejected confirmPurchase

A newly registered client is sent the current presence and event snapshots;
no other client sees the connect. On disconnect the username bound to the
connection, if it is still bound to it, is removed from presence and the
new snapshot is broadcast.

Connection settings:

  - writeWait: 10 seconds
  - pongWait: 60 seconds
  - pingPeriod: 54 seconds
  - maxMessageSize: 64 KB
  - inbound messages are rate limited per client (golang.org/x/time/rate)
*/
package websocket
