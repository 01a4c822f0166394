// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package api provides the HTTP surface of the relay.

Routes:

  - GET  /ws, /socket: WebSocket upgrade into the broadcast hub
  - POST /upload: multipart event creation with an image
  - GET  /uploads/{name}: locally stored images (local media backend only)
  - GET  /api/v1/locations, /api/v1/events: read-only snapshots
  - GET  /api/v1/health/live, /api/v1/health/ready: probes
  - GET  /metrics: Prometheus exposition

Response Shapes:

The /api/v1 routes use the models.APIResponse envelope:

	{"status": "success", "data": [...], "metadata": {"timestamp": "...", "count": 2}}

POST /upload keeps the flat body existing mobile clients parse:

	{"message": "Image uploaded successfully", "eventId": "e1", "imagePath": "..."}
	{"message": "No file in request."}

Middleware:

Global: request ID, real IP, panic recovery and CORS (go-chi/cors). The
upload route is rate limited per IP with go-chi/httprate using the
security.rate_limit_* settings; read routes use a fixed, more permissive
limit. Prometheus instrumentation wraps everything except the WebSocket
and static routes.

WebSocket Origin:

relay.allowed_origins lists accepted Origin headers. "*" accepts every
origin, including requests without one (native mobile clients send none).
Otherwise the Origin must match exactly.
*/
package api
