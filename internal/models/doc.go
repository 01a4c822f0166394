// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

/*
Package models defines the records exchanged between Locrelay components
and its clients.

  - UserLocation / LocationUpdate: presence entries and their inbound patch form
  - Event / EventRequest: map markers and the validated create request
  - Message type constants for the WebSocket protocol
  - APIResponse, UploadResponse, HealthStatus: HTTP bodies

JSON field names are fixed by the mobile client (camelCase, "eventname"
lower-case). Event also carries bson tags so the MongoDB mirror stores the
same shape, with eventId as the document _id.
*/
package models
