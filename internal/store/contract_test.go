// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/locrelay/internal/models"
)

func testEvent(id string) *models.Event {
	return &models.Event{
		EventID:          id,
		Latitude:         52.52,
		Longitude:        13.405,
		EventName:        "Pop-up " + id,
		Image:            "/uploads/" + id + ".jpg",
		EventDescription: "test event",
		Duration:         60_000,
		CreatedAt:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		want := testEvent("a")
		if err := s.Put(ctx, want); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get(ctx, "a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.EventID != want.EventID || got.EventName != want.EventName || got.Duration != want.Duration {
			t.Errorf("Get = %+v, want %+v", got, want)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		ev := testEvent("a")
		ev.EventName = "renamed"
		if err := s.Put(ctx, ev); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get(ctx, "a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.EventName != "renamed" {
			t.Errorf("EventName = %q, want renamed", got.EventName)
		}
	})

	t.Run("list returns all", func(t *testing.T) {
		if err := s.Put(ctx, testEvent("b")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List len = %d, want 2", len(list))
		}
		if list[0].EventID != "a" || list[1].EventID != "b" {
			t.Errorf("List order = [%s %s], want [a b]", list[0].EventID, list[1].EventID)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := s.Delete(ctx, "a"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := s.Delete(ctx, "a"); err != nil {
			t.Fatalf("second Delete: %v", err)
		}
		if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}
