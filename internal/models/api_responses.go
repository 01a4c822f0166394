// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package models

import (
	"time"
)

// APIResponse is the envelope used by the read-only JSON endpoints under
// /api/v1.
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": [{"eventId": "e1", ...}],
//	  "metadata": {"timestamp": "2026-05-01T12:00:00Z", "count": 1}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every APIResponse.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
}

// APIError describes a failed request.
//
// Codes in use:
//   - VALIDATION_ERROR: malformed or missing input
//   - MISSING_FILE: upload without an image part
//   - UNSUPPORTED_MEDIA_TYPE: upload part is not an image
//   - PAYLOAD_TOO_LARGE: upload exceeds the configured limit
//   - STORAGE_ERROR: media could not be stored
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// UploadResponse is returned by POST /upload on success. The message text
// and field names are what existing mobile clients parse.
type UploadResponse struct {
	Message   string `json:"message"`
	EventID   string `json:"eventId"`
	ImagePath string `json:"imagePath"`
}

// UploadError is the flat error body of POST /upload. Clients read
// "message"; "code" is additive.
type UploadError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Clients   int               `json:"clients"`
	Users     int               `json:"users"`
	Events    int               `json:"events"`
	Timestamp time.Time         `json:"timestamp"`
}
