// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package main is the entry point for the Locrelay server.

Locrelay relays live user locations and short-lived events between mobile
clients. Clients hold a WebSocket open to share their position and to see
everyone else's; events are created over the same socket or by uploading an
image to POST /upload, are mirrored to a durable store, and end on their own
when their duration runs out.

# Process Layout

	RootSupervisor ("locrelay")
	├── DataSupervisor ("data-layer")
	│   ├── event-sweep
	│   └── event-reconcile
	├── MessagingSupervisor ("messaging-layer")
	│   └── websocket-hub
	└── APISupervisor ("api-layer")
	    └── http-server

Startup order:

 1. Configuration (Koanf v2: defaults, config.yaml, environment)
 2. Logging (zerolog)
 3. Event store (badger, redis, mongo or memory) behind a circuit breaker
 4. Event registry, presence registry and broadcast hub
 5. Media store (local directory or S3)
 6. HTTP router and the supervisor tree

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up to
its shutdown timeout, the hub closes every client, the expiry timers are
stopped and the store is closed.

# Example

	export STORE_BACKEND=redis
	export REDIS_URL=redis://localhost:6379/0
	export MEDIA_BACKEND=s3
	export S3_BUCKET=relay-media
	./locrelay
*/
package main
