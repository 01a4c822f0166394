// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package models

import (
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestLocationUpdateApplyTo(t *testing.T) {
	t.Parallel()

	base := UserLocation{Username: "alice", Latitude: 1, Longitude: 2, Image: "a.png", GPSEnabled: true, Duration: 10}

	tests := []struct {
		name   string
		update LocationUpdate
		want   UserLocation
	}{
		{
			name:   "only coordinates",
			update: LocationUpdate{Username: "alice", Latitude: ptr(52.5), Longitude: ptr(13.4)},
			want:   UserLocation{Username: "alice", Latitude: 52.5, Longitude: 13.4, Image: "a.png", GPSEnabled: true, Duration: 10},
		},
		{
			name:   "image and duration",
			update: LocationUpdate{Username: "alice", Image: ptr("b.png"), Duration: ptr(int64(99))},
			want:   UserLocation{Username: "alice", Latitude: 1, Longitude: 2, Image: "b.png", GPSEnabled: true, Duration: 99},
		},
		{
			name:   "empty patch keeps everything",
			update: LocationUpdate{Username: "alice"},
			want:   base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.update.ApplyTo(base); got != tt.want {
				t.Errorf("ApplyTo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocationUpdateVisible(t *testing.T) {
	t.Parallel()

	if (&LocationUpdate{}).Visible() {
		t.Error("missing gpsEnabled should not be visible")
	}
	if (&LocationUpdate{GPSEnabled: ptr(false)}).Visible() {
		t.Error("gpsEnabled=false should not be visible")
	}
	if !(&LocationUpdate{GPSEnabled: ptr(true)}).Visible() {
		t.Error("gpsEnabled=true should be visible")
	}
}

func TestEventExpired(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{EventID: "e1", Duration: 5000, CreatedAt: created}

	tests := []struct {
		offset time.Duration
		want   bool
	}{
		{0, false},
		{4999 * time.Millisecond, false},
		{5000 * time.Millisecond, true},
		{time.Minute, true},
	}
	for _, tt := range tests {
		if got := ev.Expired(created.Add(tt.offset)); got != tt.want {
			t.Errorf("Expired(+%v) = %v, want %v", tt.offset, got, tt.want)
		}
	}
	if !ev.ExpiresAt().Equal(created.Add(5 * time.Second)) {
		t.Errorf("ExpiresAt() = %v", ev.ExpiresAt())
	}
}

func TestEventExpiresAt_SaturatesHugeDuration(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ev := Event{EventID: "big", Duration: 9_300_000_000_000, CreatedAt: created}

	if !ev.ExpiresAt().After(created) {
		t.Fatalf("ExpiresAt() = %v, want after %v", ev.ExpiresAt(), created)
	}
	if ev.Expired(created.Add(24 * time.Hour)) {
		t.Error("event with a huge duration expired after a day")
	}
}

func TestEventRequest_DurationUpperBound(t *testing.T) {
	if got := MaxDurationMillis; got != 31_536_000_000 {
		t.Fatalf("MaxDurationMillis = %d, want 31536000000 to match the validate tag", got)
	}
}

func TestEventRequestToEvent(t *testing.T) {
	t.Parallel()

	req := EventRequest{
		EventID:          "e1",
		Latitude:         ptr(52.5),
		Longitude:        ptr(13.4),
		EventName:        "Gig",
		Image:            "/uploads/x.png",
		EventDescription: "desc",
		Duration:         ptr(int64(5000)),
	}
	ev := req.ToEvent()
	if ev.EventID != "e1" || ev.Latitude != 52.5 || ev.Longitude != 13.4 || ev.Duration != 5000 {
		t.Errorf("ToEvent() = %+v", ev)
	}
	if !ev.CreatedAt.IsZero() {
		t.Error("ToEvent() should leave CreatedAt for the registry")
	}
}
