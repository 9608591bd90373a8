package locking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stevedore/pkg/logging"
)

const lockingSubsystem = "Locking"

// TimeoutError is returned when a lock could not be acquired within
// the requested bound. It always names the key and the timeout so the
// operator can tell which resource is contended.
type TimeoutError struct {
	Key     string
	Timeout time.Duration
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for lock %q: another operation may be in progress", e.Timeout, e.Key)
}

// IsTimeout checks whether an error is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// waiter represents one queued acquisition attempt. Its channel is
// closed by release when ownership is handed to it.
type waiter struct {
	ready chan struct{}
}

// entry tracks the state of a single key: whether the lock is held and
// the FIFO queue of waiters behind the current holder.
type entry struct {
	held    bool
	waiters []*waiter
}

// Registry is a process-wide registry of named locks. It is created
// once at startup and passed explicitly to the components that need
// it; it is never reset.
//
// The zero value is not usable; use NewRegistry.
type Registry struct {
	// mu guards the entries map and every entry's state. Critical
	// sections under mu never block, so contention on one key cannot
	// stall acquire/release traffic on another.
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// WithLock acquires the lock for key, runs fn, and releases the lock
// on every exit path, including a panic inside fn. If the lock cannot
// be acquired before timeout elapses, it returns a *TimeoutError and
// fn is never invoked.
//
// Re-entrant acquisition of the same key from inside fn is not
// supported and deadlocks; each tool invocation takes at most one
// lock.
func (r *Registry) WithLock(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	if err := r.acquire(ctx, key, timeout); err != nil {
		return err
	}
	defer r.release(key)
	return fn()
}

// acquire blocks until the key's lock is owned by the caller, the
// timeout elapses, or ctx is cancelled.
func (r *Registry) acquire(ctx context.Context, key string, timeout time.Duration) error {
	r.mu.Lock()
	e := r.entries[key]
	if e == nil {
		e = &entry{}
		r.entries[key] = e
	}
	if !e.held {
		e.held = true
		r.mu.Unlock()
		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	e.waiters = append(e.waiters, w)
	queued := len(e.waiters)
	r.mu.Unlock()

	logging.Debug(lockingSubsystem, "Waiting for lock %q (%d in queue, timeout %s)", key, queued, timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.ready:
		return nil
	case <-timer.C:
		return r.abandon(key, w, &TimeoutError{Key: key, Timeout: timeout})
	case <-ctx.Done():
		return r.abandon(key, w, fmt.Errorf("waiting for lock %q: %w", key, ctx.Err()))
	}
}

// abandon removes a waiter that gave up (timeout or cancellation). If
// release handed the lock to this waiter before we got here, the
// waiter briefly owns it and must pass it on so later waiters are not
// blocked by a caller that already failed.
func (r *Registry) abandon(key string, w *waiter, cause error) error {
	r.mu.Lock()
	if e := r.entries[key]; e != nil {
		for i, queued := range e.waiters {
			if queued == w {
				e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
				r.mu.Unlock()
				return cause
			}
		}
	}
	r.mu.Unlock()

	// Not in the queue: ownership was handed off concurrently. The
	// ready channel is closed under the registry mutex, so it is
	// guaranteed closed by now.
	<-w.ready
	r.release(key)
	return cause
}

// release hands the lock to the next FIFO waiter, or marks the key
// free and drops the idle entry when nobody is waiting.
func (r *Registry) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[key]
	if e == nil || !e.held {
		// Double release is a caller bug; tolerate it rather than
		// corrupting the registry.
		logging.Warn(lockingSubsystem, "Release of unheld lock %q ignored", key)
		return
	}

	if len(e.waiters) > 0 {
		next := e.waiters[0]
		e.waiters = e.waiters[1:]
		// held stays true: ownership transfers directly, preserving
		// FIFO order against late arrivals.
		close(next.ready)
		return
	}

	e.held = false
	delete(r.entries, key)
}
