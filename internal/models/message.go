// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package models

// WebSocket message types. The names match what the mobile client emits
// and listens for.
const (
	MessageTypeUpdateLocation       = "updateLocation"
	MessageTypeConfirmPurchase      = "confirmPurchase"
	MessageTypeUpdateEventLocations = "updateEventLocations"
	MessageTypeEventEnded           = "eventEnded"
	MessageTypePing                 = "ping"
	MessageTypePong                 = "pong"
	MessageTypeError                = "error"
)

// MessageError is the payload of an error message sent to a single client.
type MessageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
