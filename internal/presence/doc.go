// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

// Package presence holds the live user-location table and the mapping
// between WebSocket connections and the usernames they report for.
//
// Both types are safe for concurrent use on their own. The broadcast hub
// serializes a registry mutation, the matching binding update and the
// resulting snapshot under its own lock so that snapshots leave the
// process in mutation order.
package presence
