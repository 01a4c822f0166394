// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

// Package logging is the process-wide zerolog facade used by every Locrelay
// component.
//
// A single global logger is configured once from main via Init and read
// through the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("event_id", id).Msg("Event created")
//
// Request-scoped fields (request_id, conn_id) travel in context.Context and
// are attached by Ctx:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Upload rejected")
//
// The supervisor tree logs through log/slog; NewSlogLogger bridges those
// records back into zerolog so all output shares one format.
//
// Always terminate an event chain with Msg or Send, otherwise nothing is
// written.
package logging
