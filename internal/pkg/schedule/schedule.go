// Package schedule provides a generic retry driver for asynchronous operations.
//
// An operation is executed on a background goroutine. A transient failure is
// retried with exponentially increasing delay (initial * 2^attempt, no jitter,
// no cap) until the retry ceiling is reached, then the last error is committed
// into the target future. A permanent failure is committed immediately, it is
// never retried. The operation classifies its own errors, see Permanent.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/mcvid/mcvid/internal/pkg/future"
	"github.com/mcvid/mcvid/internal/pkg/log"
)

const (
	DefaultMaxRetries   = 5
	DefaultInitialDelay = time.Second
)

// Operation produces a value or fails.
type Operation[T any] func(ctx context.Context) (T, error)

// Scheduler runs operations with bounded exponential retry.
type Scheduler struct {
	clock        clockwork.Clock
	logger       log.Logger
	maxRetries   uint64
	initialDelay time.Duration
	wg           sync.WaitGroup
}

type Option func(*Scheduler)

// WithMaxRetries sets the retry ceiling, the number of re-attempts after the first failure.
func WithMaxRetries(n uint64) Option {
	return func(s *Scheduler) {
		s.maxRetries = n
	}
}

// WithInitialDelay sets the delay before the first re-attempt.
// The n-th re-attempt is delayed by initialDelay * 2^n.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		s.initialDelay = d
	}
}

func NewScheduler(clock clockwork.Clock, logger log.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:        clock,
		logger:       logger,
		maxRetries:   DefaultMaxRetries,
		initialDelay: DefaultInitialDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs the operation asynchronously and commits the outcome into the
// future cycle identified by the generation. The caller must not submit two
// operations targeting the same future cycle.
func Submit[T any](ctx context.Context, s *Scheduler, op Operation[T], fut *future.SettableFuture[T], generation uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var value T
		attempt := func() error {
			v, err := op(ctx)
			if err != nil {
				if IsPermanent(err) {
					return backoff.Permanent(err)
				}
				return err
			}
			value = v
			return nil
		}

		notify := func(err error, delay time.Duration) {
			s.logger.Debugf("operation failed: %s, next attempt in %s", err, delay)
		}

		b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
		if err := backoff.RetryNotifyWithTimer(attempt, b, notify, newTimer(s.clock)); err != nil {
			fut.PutError(generation, err)
			return
		}
		fut.Put(generation, value)
	}()
}

// Wait blocks until all submitted operations are committed.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = time.Duration(1<<62 - 1)
	b.MaxElapsedTime = 0 // don't stop
	b.Reset()
	return b
}
