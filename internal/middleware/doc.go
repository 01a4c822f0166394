// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package middleware provides HTTP middleware shared by the relay's routes.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and places it in the
    request context where logging.Ctx picks it up
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern rather than raw path so stored media names do not
    explode label cardinality

Both are plain http.HandlerFunc wrappers. The api package adapts them to
chi's func(http.Handler) http.Handler form:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Wrapped response writers expose Unwrap, so http.ResponseController (and
with it the WebSocket upgrade) still reaches the underlying connection.
*/
package middleware
