// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package metrics declares the Prometheus collectors exported at /metrics.

Collectors are package-level promauto variables so any component can record
without plumbing a registry through constructors.

# Families

  - locrelay_websocket_*: connections, inbound messages, drops
  - locrelay_broadcasts_total, locrelay_clients_evicted_total: fan-out
  - locrelay_presence_entries, locrelay_active_events: registry sizes
  - locrelay_events_*: create, reject and expiry counts (expiry by path)
  - locrelay_store_*: durable mirror calls per backend
  - locrelay_upload*: ingest endpoint
  - api_*: HTTP request rate and latency
  - circuit_breaker_*: durable store breaker

	curl http://localhost:3001/metrics
*/
package metrics
