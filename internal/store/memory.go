// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/locrelay/internal/models"
)

// Memory is a process-local Store. It survives nothing and exists for
// development and tests.
type Memory struct {
	mu     sync.RWMutex
	events map[string]models.Event
}

func NewMemory() *Memory {
	return &Memory{events: make(map[string]models.Event)}
}

func (m *Memory) Put(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.EventID] = *ev
	return nil
}

func (m *Memory) Get(_ context.Context, eventID string) (*models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ev, nil
}

func (m *Memory) Delete(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, eventID)
	return nil
}

// List returns events sorted by eventId.
func (m *Memory) List(_ context.Context) ([]models.Event, error) {
	m.mu.RLock()
	out := make([]models.Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
func (m *Memory) Backend() string            { return "memory" }
