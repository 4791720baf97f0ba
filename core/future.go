package core

import (
	"context"
	"sync"
)

// Future is the result handle returned to a submitter. It is satisfied
// exactly once, by the worker that executes (or the shutdown path that
// drops) the task it stands for, and may be polled or blocked on.
//
// This is this module's realization of the "standard future/promise
// primitive from the host platform" that SPEC_FULL.md names as an external
// collaborator: Go has no built-in generic future type, so one is provided
// here in the style of the host library's own generic result-carrying
// helpers (TaskWithResult[T]/ReplyWithResult[T]).
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// NewFuture returns an unsatisfied Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve satisfies the future. Only the first call has any effect; later
// calls are no-ops, matching the "satisfied exactly once" contract.
func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Get blocks until the future is satisfied or ctx is done, whichever comes
// first.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryGet returns the future's value without blocking. It reports
// ErrFutureNotReady if the task has not completed yet.
func (f *Future[T]) TryGet() (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
		var zero T
		return zero, ErrFutureNotReady
	}
}

// Done returns a channel that is closed once the future is satisfied, for
// callers that want to select on it alongside other channels.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
