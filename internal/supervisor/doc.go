// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package supervisor runs the relay's long-lived components under suture v4.

# Overview

	RootSupervisor ("locrelay")
	├── DataSupervisor ("data-layer")
	│   ├── EventSweepService      periodic removal of expired events
	│   └── EventReconcileService  periodic reload from the durable store
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A panic or error in one service restarts that service only. The hub keeps
its clients map across restarts of the sweep or reconcile loops, and a
store outage that makes reconcile fail never takes the HTTP server down.

Failure handling follows suture: each failure adds to a decaying counter;
past FailureThreshold the supervisor waits FailureBackoff before the next
restart.

# Logging

Supervisor events go through sutureslog to the slog.Logger passed to
NewSupervisorTree, normally logging.NewSlogLogger(), so they land in the
same zerolog output as everything else.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewEventSweepService(registry, cfg.Relay.SweepInterval))
	tree.AddDataService(services.NewEventReconcileService(registry, cfg.Relay.ReconcileInterval))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(newServer, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
