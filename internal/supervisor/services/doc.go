// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

// Package services adapts the relay's long-running components to
// suture.Service. Each wrapper depends on a one- or two-method interface
// rather than the concrete type, so the supervisor package never imports
// the websocket or events packages and every wrapper can be tested with a
// fake.
//
// Every Serve returns ctx.Err() on a normal stop. Any other return is a
// failure that suture counts and restarts.
package services
