// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package events owns the set of active time-bounded map markers.

The Registry keeps events in memory, mirrors every mutation to a durable
store.Store and arms one expiry timer per event through the Scheduler.
Three independent paths remove an event once createdAt + duration has
passed:

  - the one-shot timer armed on Create (path "timer")
  - SweepExpired, run periodically by RunSweep (path "sweep")
  - Reconcile, which reloads the store and drops expired records (path "reconcile")

All three converge on the same idempotent removal, so an event that two
paths race to expire produces exactly one eventEnded notification.

Reconcile replaces the in-memory set with the durable listing. Ids that
were created or removed while the listing was in flight keep their
in-memory state, which bounds the window in which a just-removed event
could reappear to a single store round trip.

Change notification goes through the Notifier interface; the websocket hub
implements it and pulls Snapshot itself, so the registry never calls out
while holding its lock.
*/
package events
