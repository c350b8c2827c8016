// Package watchdog implements the per-worker deadline record described in
// spec.md §4.2, grounded on original_source/src/workers.h's Worker::Deadline_t
// and the mutex-guarded polling pattern from go-kgp/tourn.go.
package watchdog

import (
	"sync"
	"time"
)

// Callback is invoked at most once when a deadline fires. Implementers
// typically capture a reference to the offending agent and force-terminate
// it (spec.md §9, "Deadline callbacks").
type Callback func()

// Watchdog holds at most one active deadline for a single worker.
type Watchdog struct {
	mu          sync.Mutex
	active      bool
	fired       bool
	engineName  string
	description string
	deadline    time.Time
	callback    Callback
}

// New returns an idle Watchdog.
func New() *Watchdog {
	return &Watchdog{}
}

// Set records a new deadline atomically, replacing any previous one.
func (w *Watchdog) Set(engineName string, deadline time.Time, description string, cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.active = true
	w.fired = false
	w.engineName = engineName
	w.description = description
	w.deadline = deadline
	w.callback = cb
}

// Clear deactivates the current deadline, if any.
func (w *Watchdog) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.active = false
	w.callback = nil
}

// Overdue returns how far past its deadline the active deadline is, or
// zero if there is no active deadline or it has not yet expired.
func (w *Watchdog) Overdue() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return 0
	}
	if d := time.Since(w.deadline); d > 0 {
		return d
	}
	return 0
}

// FireOnce invokes the callback iff the deadline is active and has not
// already fired, then marks it fired. Safe to call repeatedly.
func (w *Watchdog) FireOnce() {
	w.mu.Lock()
	if !w.active || w.fired {
		w.mu.Unlock()
		return
	}
	w.fired = true
	cb := w.callback
	w.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// WaitCallbackDone blocks until any in-flight Set/Clear/FireOnce call has
// released the lock, giving a reader that just hit end-of-stream a
// synchronization point against the supervisor's force-kill (spec.md §4.1).
func (w *Watchdog) WaitCallbackDone() {
	w.mu.Lock()
	//nolint:staticcheck // intentional lock/unlock as a barrier, not a critical section
	w.mu.Unlock()
}

// Description returns the human-readable description of the active
// deadline, for logging.
func (w *Watchdog) Description() (engine, description string, active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engineName, w.description, w.active
}
