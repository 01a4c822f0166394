// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package models

// UserLocation is the latest reported position of one user. The presence
// registry holds at most one per username and broadcasts them as a snapshot.
type UserLocation struct {
	Username   string  `json:"username"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Image      string  `json:"image"`
	GPSEnabled bool    `json:"gpsEnabled"`
	Duration   int64   `json:"duration"`
}

// LocationUpdate is the inbound updateLocation payload. Every field except
// Username is optional; nil fields leave the stored value untouched.
type LocationUpdate struct {
	Username   string   `json:"username"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Image      *string  `json:"image,omitempty"`
	GPSEnabled *bool    `json:"gpsEnabled,omitempty"`
	Duration   *int64   `json:"duration,omitempty"`
}

// Visible reports whether the update keeps the user on the map.
// An absent gpsEnabled flag counts as false.
func (u *LocationUpdate) Visible() bool {
	return u.GPSEnabled != nil && *u.GPSEnabled
}

// ApplyTo merges the provided fields onto base and returns the result.
func (u *LocationUpdate) ApplyTo(base UserLocation) UserLocation {
	base.Username = u.Username
	if u.Latitude != nil {
		base.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		base.Longitude = *u.Longitude
	}
	if u.Image != nil {
		base.Image = *u.Image
	}
	if u.GPSEnabled != nil {
		base.GPSEnabled = *u.GPSEnabled
	}
	if u.Duration != nil {
		base.Duration = *u.Duration
	}
	return base
}
