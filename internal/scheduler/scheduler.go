// Package scheduler arms one-shot timers that deliver scheduled posts
// when their target instant arrives. The timer map is a cache: the post
// store is the source of truth, and LoadPending rebuilds the map from
// it on every process start.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"postqueue/internal/model"
)

// ErrStopped is returned by Add after Stop; the row stays persisted as
// scheduled and will be re-armed by LoadPending on the next start.
var ErrStopped = errors.New("scheduler is stopped")

// Executor runs the delivery attempt for a single record id.
type Executor interface {
	Execute(ctx context.Context, id int64) error
}

// PendingSource lists records still in the scheduled state, ascending
// by scheduled time.
type PendingSource interface {
	ListPending(ctx context.Context) ([]model.ScheduledPost, error)
}

type Scheduler struct {
	exec         Executor
	pastDueDelay time.Duration

	mu      sync.Mutex
	timers  map[int64]*time.Timer
	stopped bool
}

// New creates a scheduler. pastDueDelay is the fixed short delay applied
// to fire times already in the past, so a restart with many overdue rows
// does not fire them all in the same instant as they are loaded.
func New(exec Executor, pastDueDelay time.Duration) (*Scheduler, error) {
	if exec == nil {
		return nil, errors.New("executor must not be nil")
	}
	if pastDueDelay <= 0 {
		return nil, errors.New("pastDueDelay must be > 0")
	}
	return &Scheduler{
		exec:         exec,
		pastDueDelay: pastDueDelay,
		timers:       make(map[int64]*time.Timer),
	}, nil
}

// Add arms a one-shot timer that executes delivery for id at fireAtUTC,
// replacing any timer already armed for the same id. A fire time in the
// past (or too close to now) is pushed out by pastDueDelay.
func (s *Scheduler) Add(id int64, fireAtUTC time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}

	if old, ok := s.timers[id]; ok {
		old.Stop()
	}

	delay := time.Until(fireAtUTC)
	if delay < s.pastDueDelay {
		delay = s.pastDueDelay
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.fire(id, t)
	})
	s.timers[id] = t

	slog.Info("timer armed", "id", id, "fire_at", fireAtUTC.UTC().Format(time.RFC3339), "delay", delay.String())
	return nil
}

// Cancel disarms the timer for id if one is armed. Missing timers are
// not an error; a cancel racing an in-flight fire is resolved by the
// executor's own status guard.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
		slog.Info("timer disarmed", "id", id)
	}
}

// LoadPending arms a timer for every record still in the scheduled
// state. This is the sole recovery path after a crash or restart: no
// timer state is persisted. Returns the number of timers armed.
func (s *Scheduler) LoadPending(ctx context.Context, src PendingSource) (int, error) {
	posts, err := src.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	armed := 0
	for _, p := range posts {
		if err := s.Add(p.ID, p.ScheduledUTC); err != nil {
			return armed, err
		}
		armed++
	}

	slog.Info("pending posts loaded", "armed", armed)
	return armed, nil
}

// Pending returns the number of currently armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms all timers and rejects further Adds. Rows stay persisted
// as scheduled and fire after the next start's LoadPending.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}

	slog.Info("scheduler stopped")
}

// fire runs when a timer expires. A timer is single-use: it only
// proceeds if it is still the armed timer for its id, so a fire racing
// a Cancel or a replacing Add is a no-op.
func (s *Scheduler) fire(id int64, self *time.Timer) {
	s.mu.Lock()
	cur, ok := s.timers[id]
	if !ok || cur != self || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.mu.Unlock()

	slog.Info("timer fired", "id", id)

	if err := s.exec.Execute(context.Background(), id); err != nil {
		slog.Error("delivery execution failed", "id", id, "err", err)
	}
}
