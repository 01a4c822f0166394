// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package models

import (
	"math"
	"time"
)

// MaxDurationMillis is the longest accepted event duration, 365 days.
const MaxDurationMillis int64 = 365 * 24 * 60 * 60 * 1000

// maxOffsetMillis is the largest millisecond count a time.Duration holds.
const maxOffsetMillis = math.MaxInt64 / int64(time.Millisecond)

// Event is a time-bounded map marker. Duration is in milliseconds and
// counts from CreatedAt, which the event registry assigns.
type Event struct {
	EventID          string    `json:"eventId" bson:"_id"`
	Latitude         float64   `json:"latitude" bson:"latitude"`
	Longitude        float64   `json:"longitude" bson:"longitude"`
	EventName        string    `json:"eventname" bson:"eventname"`
	Image            string    `json:"image" bson:"image"`
	EventDescription string    `json:"eventDescription" bson:"eventDescription"`
	Duration         int64     `json:"duration" bson:"duration"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}

// ExpiresAt returns CreatedAt + Duration. A Duration too large for a
// time.Duration saturates instead of wrapping.
func (e *Event) ExpiresAt() time.Time {
	switch {
	case e.Duration > maxOffsetMillis:
		return e.CreatedAt.Add(time.Duration(math.MaxInt64))
	case e.Duration < -maxOffsetMillis:
		return e.CreatedAt.Add(time.Duration(math.MinInt64))
	}
	return e.CreatedAt.Add(time.Duration(e.Duration) * time.Millisecond)
}

// Expired reports whether the event is past its end at now.
// An event whose end equals now is expired.
func (e *Event) Expired(now time.Time) bool {
	return !e.ExpiresAt().After(now)
}

// EventRequest is the inbound create payload used by both confirmPurchase
// and POST /upload. Pointer fields distinguish "absent" from zero.
//
// Validation rules:
//   - eventId: required, at most 128 characters
//   - latitude: required, finite, -90 to 90
//   - longitude: required, finite, -180 to 180
//   - duration: required, milliseconds, greater than 0, at most MaxDurationMillis
type EventRequest struct {
	EventID          string   `json:"eventId" validate:"required,max=128"`
	Latitude         *float64 `json:"latitude" validate:"required,finite,min=-90,max=90"`
	Longitude        *float64 `json:"longitude" validate:"required,finite,min=-180,max=180"`
	EventName        string   `json:"eventname" validate:"max=256"`
	Image            string   `json:"image" validate:"max=2048"`
	EventDescription string   `json:"eventDescription" validate:"max=4096"`
	Duration         *int64   `json:"duration" validate:"required,gt=0,lte=31536000000"`
}

// ToEvent builds the record for a validated request. CreatedAt is left
// zero for the registry to assign.
func (r *EventRequest) ToEvent() Event {
	ev := Event{
		EventID:          r.EventID,
		EventName:        r.EventName,
		Image:            r.Image,
		EventDescription: r.EventDescription,
	}
	if r.Latitude != nil {
		ev.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		ev.Longitude = *r.Longitude
	}
	if r.Duration != nil {
		ev.Duration = *r.Duration
	}
	return ev
}

// EventEnded is the payload of the eventEnded message.
type EventEnded struct {
	EventID string `json:"eventId"`
}
