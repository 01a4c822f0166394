// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package presence

import (
	"sort"
	"sync"

	"github.com/tomtom215/locrelay/internal/models"
)

// Registry maps username to the latest UserLocation. Entries are stored
// by value and replaced whole, so a reader never sees half an update.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]models.UserLocation
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]models.UserLocation)}
}

// Upsert merges update onto the existing entry for update.Username (or an
// empty one) and returns the stored result.
func (r *Registry) Upsert(update *models.LocationUpdate) models.UserLocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := update.ApplyTo(r.entries[update.Username])
	r.entries[update.Username] = merged
	return merged
}

// Remove deletes the entry and reports whether one existed.
func (r *Registry) Remove(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[username]
	delete(r.entries, username)
	return ok
}

func (r *Registry) Get(username string) (models.UserLocation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loc, ok := r.entries[username]
	return loc, ok
}

// Snapshot returns a copy of every entry sorted by username. The slice is
// never nil so it encodes as [] when empty.
func (r *Registry) Snapshot() []models.UserLocation {
	r.mu.RLock()
	out := make([]models.UserLocation, 0, len(r.entries))
	for _, loc := range r.entries {
		out = append(out, loc)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
