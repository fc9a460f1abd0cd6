// Package future provides a single-writer, multi-reader completion cell.
//
// A SettableFuture starts pending and is completed at most once per cycle,
// either with a value or with an error. Reset starts a new cycle: it returns
// the cell to the pending state and invalidates writers from previous cycles
// via a generation counter, so a late Put from an abandoned cycle is a no-op
// instead of a race.
package future

import (
	"context"

	"github.com/sasha-s/go-deadlock"

	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

// ErrCancelNotSupported is returned by Cancel, in-flight operations cannot be abandoned,
// they either retry or fail terminally.
var ErrCancelNotSupported = errors.New("cancellation is not supported")

// SettableFuture is a completion cell with Pending -> Value | Error transitions.
type SettableFuture[T any] struct {
	lock       *deadlock.RWMutex
	generation uint64
	done       chan struct{}
	completed  bool
	value      T
	err        error
}

func New[T any]() *SettableFuture[T] {
	return &SettableFuture[T]{
		lock: &deadlock.RWMutex{},
		done: make(chan struct{}),
	}
}

// Generation returns the current cycle number.
// A writer must capture it before starting work and pass it to Put/PutError.
func (f *SettableFuture[T]) Generation() uint64 {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.generation
}

// Put completes the pending cycle with a value.
// It returns false if the generation is stale or the cycle is already completed.
func (f *SettableFuture[T]) Put(generation uint64, value T) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	if generation != f.generation || f.completed {
		return false
	}
	f.value = value
	f.completed = true
	close(f.done)
	return true
}

// PutError completes the pending cycle with an error.
// It returns false if the generation is stale or the cycle is already completed.
func (f *SettableFuture[T]) PutError(generation uint64, err error) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	if generation != f.generation || f.completed {
		return false
	}
	f.err = err
	f.completed = true
	close(f.done)
	return true
}

// IsDone returns true if the current cycle is completed with a value or an error.
func (f *SettableFuture[T]) IsDone() bool {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.completed
}

// Value polls the completion state without blocking.
// done = false means the cycle is still pending and value/err are zero.
func (f *SettableFuture[T]) Value() (value T, err error, done bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if !f.completed {
		var zero T
		return zero, nil, false
	}
	return f.value, f.err, true
}

// Get blocks until the current cycle is completed or the context is done.
// It exists for tests and utilities, the resolver fast path only polls.
func (f *SettableFuture[T]) Get(ctx context.Context) (T, error) {
	f.lock.RLock()
	done := f.done
	f.lock.RUnlock()

	select {
	case <-done:
		value, err, _ := f.Value()
		return value, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Reset returns the cell to the pending state and starts a new cycle.
// The returned generation must be passed to Put/PutError by the new writer.
// Writers from previous cycles become no-ops.
func (f *SettableFuture[T]) Reset() uint64 {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.completed {
		f.done = make(chan struct{})
	}
	var zero T
	f.value = zero
	f.err = nil
	f.completed = false
	f.generation++
	return f.generation
}

// Cancel always fails, see ErrCancelNotSupported.
func (f *SettableFuture[T]) Cancel() error {
	return ErrCancelNotSupported
}
