// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package events

import (
	"sync"
	"time"

	"github.com/tomtom215/locrelay/internal/logging"
)

// Scheduler keeps one time.AfterFunc per event id and calls fire with the
// armed deadline when it elapses. Re-arming an id replaces its timer.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*armed
	seq     uint64
	fire    func(id string, at time.Time)
	now     func() time.Time
	stopped bool
}

type armed struct {
	timer *time.Timer
	seq   uint64
	at    time.Time
}

// NewScheduler returns a scheduler that calls fire on expiry. now is used
// to turn absolute deadlines into delays; nil means time.Now.
func NewScheduler(fire func(id string, at time.Time), now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		timers: make(map[string]*armed),
		fire:   fire,
		now:    now,
	}
}

// Arm schedules id to fire at at. A deadline in the past fires immediately.
func (s *Scheduler) Arm(id string, at time.Time) {
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if prev, ok := s.timers[id]; ok {
		prev.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.timers[id] = &armed{
		seq:   seq,
		at:    at,
		timer: time.AfterFunc(delay, func() { s.elapsed(id, seq) }),
	}
}

// elapsed runs on the timer goroutine. A timer that was replaced or
// cancelled after it had already started is ignored.
func (s *Scheduler) elapsed(id string, seq uint64) {
	s.mu.Lock()
	cur, ok := s.timers[id]
	if !ok || cur.seq != seq || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	at := cur.at
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("event_id", id).
				Interface("panic", r).
				Msg("Expiry timer callback panicked; sweep will retry")
		}
	}()
	s.fire(id, at)
}

// Cancel stops the timer for id, if any.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.timers[id]; ok {
		cur.timer.Stop()
		delete(s.timers, id)
	}
}

// Armed reports whether id has a pending timer.
func (s *Scheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// Deadline returns the time id is armed for.
func (s *Scheduler) Deadline(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.timers[id]
	if !ok {
		return time.Time{}, false
	}
	return cur.at, true
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every timer. Later Arm calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, cur := range s.timers {
		cur.timer.Stop()
		delete(s.timers, id)
	}
}
