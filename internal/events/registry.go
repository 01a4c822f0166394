// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/metrics"
	"github.com/tomtom215/locrelay/internal/models"
	"github.com/tomtom215/locrelay/internal/store"
	"github.com/tomtom215/locrelay/internal/validation"
)

// ErrInvalidEvent wraps the validation failure of a rejected create.
var ErrInvalidEvent = errors.New("invalid event")

// Removal paths, used as the metrics label.
const (
	PathTimer     = "timer"
	PathSweep     = "sweep"
	PathReconcile = "reconcile"
)

// Notifier receives registry changes. Both methods are called after the
// registry lock has been released.
type Notifier interface {
	// EventsChanged signals that Snapshot has a new value.
	EventsChanged()
	// EventEnded signals that eventID reached the end of its life.
	EventEnded(eventID string)
}

type nopNotifier struct{}

func (nopNotifier) EventsChanged()    {}
func (nopNotifier) EventEnded(string) {}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now for createdAt assignment and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithNotifier sets the change listener.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// Registry is the in-memory event set with its durable mirror.
type Registry struct {
	mu     sync.RWMutex
	events map[string]models.Event
	// dirty records ids mutated while a Reconcile listing is in flight.
	// nil when no reconcile is running.
	dirty map[string]struct{}
	// inflight counts store writes per id that have not returned yet.
	inflight map[string]int

	reconcileMu sync.Mutex

	notifyMu sync.RWMutex
	notifier Notifier

	store store.Store
	sched *Scheduler
	now   func() time.Time
	log   zerolog.Logger
}

// NewRegistry creates an empty registry mirrored to s. Call Reconcile to
// load what s already holds.
func NewRegistry(s store.Store, opts ...Option) *Registry {
	r := &Registry{
		events:   make(map[string]models.Event),
		inflight: make(map[string]int),
		store:    s,
		notifier: nopNotifier{},
		now:      time.Now,
		log:      logging.WithComponent("events"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sched = NewScheduler(r.onTimer, r.now)
	return r
}

// SetNotifier replaces the change listener. The hub registers itself here
// once it has been built around the registry.
func (r *Registry) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	r.notifyMu.Lock()
	r.notifier = n
	r.notifyMu.Unlock()
}

func (r *Registry) notify() Notifier {
	r.notifyMu.RLock()
	defer r.notifyMu.RUnlock()
	return r.notifier
}

// Scheduler exposes the expiry timers, mainly for health output and tests.
func (r *Registry) Scheduler() *Scheduler { return r.sched }

// Create validates req, inserts the event, mirrors it, arms its timer and
// notifies. Re-creating an existing eventId replaces it. A store failure
// is logged; the in-memory insert stands and Reconcile is the recovery.
func (r *Registry) Create(ctx context.Context, req *models.EventRequest) (*models.Event, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidEvent)
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, verr)
	}

	ev := req.ToEvent()
	ev.CreatedAt = r.now().UTC()
	at := ev.ExpiresAt()

	r.mu.Lock()
	r.events[ev.EventID] = ev
	r.markDirty(ev.EventID)
	r.inflight[ev.EventID]++
	n := len(r.events)
	r.mu.Unlock()

	metrics.EventsCreated.Inc()
	metrics.ActiveEvents.Set(float64(n))

	err := r.store.Put(ctx, &ev)
	r.writeDone(ev.EventID)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", ev.EventID).Msg("Failed to mirror event to store")
	}

	// The timer is armed only once the Put has returned, so its Delete
	// cannot reach the store first. Nothing is armed if the event was
	// removed or replaced in the meantime.
	r.mu.Lock()
	if cur, ok := r.events[ev.EventID]; ok && cur.ExpiresAt().Equal(at) {
		r.sched.Arm(ev.EventID, at)
	}
	r.mu.Unlock()

	r.log.Info().
		Str("event_id", ev.EventID).
		Int64("duration_ms", ev.Duration).
		Time("expires_at", at).
		Msg("Event created")

	r.notify().EventsChanged()
	out := ev
	return &out, nil
}

// Remove deletes id from memory and the store and cancels its timer. It
// reports whether the event was held in memory. Calling it twice is safe.
func (r *Registry) Remove(ctx context.Context, id string) bool {
	removed := r.remove(ctx, id, nil)
	if removed {
		r.notify().EventsChanged()
	}
	return removed
}

// remove deletes id if due accepts the held event; a nil due accepts
// anything. When due rejects it, nothing is touched. Otherwise the store
// delete always runs so a retry clears an orphaned record.
func (r *Registry) remove(ctx context.Context, id string, due func(models.Event) bool) bool {
	r.mu.Lock()
	ev, ok := r.events[id]
	if due != nil && (!ok || !due(ev)) {
		r.mu.Unlock()
		return false
	}
	delete(r.events, id)
	r.sched.Cancel(id)
	r.markDirty(id)
	r.inflight[id]++
	n := len(r.events)
	r.mu.Unlock()

	if ok {
		metrics.ActiveEvents.Set(float64(n))
	}

	err := r.store.Delete(ctx, id)
	r.writeDone(id)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", id).Msg("Failed to delete event from store")
	}
	return ok
}

// Expire removes id at the end of its life and, if it was still held,
// sends EventEnded followed by EventsChanged. Expiring an id that is
// already gone only retries the store delete.
func (r *Registry) Expire(ctx context.Context, id string) bool {
	return r.expire(ctx, id, PathTimer, nil)
}

func (r *Registry) expire(ctx context.Context, id, path string, due func(models.Event) bool) bool {
	if !r.remove(ctx, id, due) {
		return false
	}
	metrics.EventsExpired.WithLabelValues(path).Inc()
	r.log.Info().Str("event_id", id).Str("path", path).Msg("Event expired")

	n := r.notify()
	n.EventEnded(id)
	n.EventsChanged()
	return true
}

// onTimer expires id only while the held event still ends at the deadline
// the timer was armed for. A re-created event under the same id has its
// own timer and is left alone.
func (r *Registry) onTimer(id string, at time.Time) {
	r.expire(context.Background(), id, PathTimer, func(ev models.Event) bool {
		return ev.ExpiresAt().Equal(at)
	})
}

// SweepExpired expires every held event whose createdAt + duration is at
// or before now and returns how many it removed. Each event is checked
// again at removal, so one re-created after the scan survives.
func (r *Registry) SweepExpired(ctx context.Context) int {
	now := r.now()
	stillDue := func(ev models.Event) bool { return ev.Expired(now) }

	r.mu.RLock()
	var due []string
	for id, ev := range r.events {
		if ev.Expired(now) {
			due = append(due, id)
		}
	}
	r.mu.RUnlock()
	sort.Strings(due)

	count := 0
	for _, id := range due {
		if r.expire(ctx, id, PathSweep, stillDue) {
			count++
		}
	}
	return count
}

// Reconcile reloads the durable store and makes it the in-memory set.
// Expired records are deleted from the store and not loaded. Events
// created or removed while the listing ran, or whose store write has not
// returned yet, keep their in-memory state.
// Held events that do not survive the reload get an EventEnded.
func (r *Registry) Reconcile(ctx context.Context) error {
	r.reconcileMu.Lock()
	defer r.reconcileMu.Unlock()

	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	r.mu.Lock()
	r.dirty = make(map[string]struct{})
	r.mu.Unlock()

	listed, err := r.store.List(ctx)
	if err != nil {
		r.mu.Lock()
		r.dirty = nil
		r.mu.Unlock()
		return fmt.Errorf("reconcile: list store: %w", err)
	}

	now := r.now()
	fresh := make(map[string]models.Event, len(listed))
	stale := make(map[string]struct{})
	for _, ev := range listed {
		if ev.Expired(now) {
			stale[ev.EventID] = struct{}{}
			continue
		}
		fresh[ev.EventID] = ev
	}

	r.mu.Lock()
	keepMemory := func(id string) {
		if cur, ok := r.events[id]; ok {
			fresh[id] = cur
		} else {
			delete(fresh, id)
		}
	}
	for id := range r.dirty {
		keepMemory(id)
	}
	for id := range r.inflight {
		keepMemory(id)
	}
	var dropped []string
	for id := range r.events {
		if _, keep := fresh[id]; !keep {
			dropped = append(dropped, id)
		}
	}
	for id, ev := range fresh {
		if r.inflight[id] > 0 {
			// The pending Create arms it once its Put returns.
			continue
		}
		at := ev.ExpiresAt()
		if armed, ok := r.sched.Deadline(id); !ok || !armed.Equal(at) {
			r.sched.Arm(id, at)
		}
	}
	for _, id := range dropped {
		r.sched.Cancel(id)
	}
	r.events = fresh
	r.dirty = nil
	n := len(fresh)
	r.mu.Unlock()

	metrics.ActiveEvents.Set(float64(n))

	for id := range stale {
		if _, kept := fresh[id]; kept {
			continue
		}
		if err := r.store.Delete(ctx, id); err != nil {
			r.log.Error().Err(err).Str("event_id", id).Msg("Failed to delete expired event from store")
		}
	}

	notifier := r.notify()
	sort.Strings(dropped)
	for _, id := range dropped {
		if _, expired := stale[id]; expired {
			metrics.EventsExpired.WithLabelValues(PathReconcile).Inc()
		}
		notifier.EventEnded(id)
	}
	notifier.EventsChanged()

	r.log.Debug().
		Int("loaded", n).
		Int("stale", len(stale)).
		Int("dropped", len(dropped)).
		Dur("took", time.Since(start)).
		Msg("Reconciled events with store")
	return nil
}

// writeDone marks the end of a store write for id. The id is marked dirty
// again so a reconcile whose listing overlapped the write keeps memory.
func (r *Registry) writeDone(id string) {
	r.mu.Lock()
	if r.inflight[id] <= 1 {
		delete(r.inflight, id)
	} else {
		r.inflight[id]--
	}
	r.markDirty(id)
	r.mu.Unlock()
}

// markDirty must be called with mu held.
func (r *Registry) markDirty(id string) {
	if r.dirty != nil {
		r.dirty[id] = struct{}{}
	}
}

// Snapshot returns a copy of all held events ordered by createdAt, then
// eventId. It never returns nil.
func (r *Registry) Snapshot() []models.Event {
	r.mu.RLock()
	out := make([]models.Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}

// Get returns the held event with id.
func (r *Registry) Get(id string) (models.Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[id]
	return ev, ok
}

// Len returns the number of held events.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Close stops every pending timer.
func (r *Registry) Close() {
	r.sched.Stop()
}
