package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorkerCount is returned by NewPool when asked to construct a
	// pool with zero workers.
	ErrInvalidWorkerCount = errors.New("threadpool: worker count must be at least 1")

	// ErrPoolStopped is returned by Submit/SubmitPriority once the pool has
	// entered StateDraining or StateStopped.
	ErrPoolStopped = errors.New("threadpool: pool is shutting down or stopped")

	// ErrTaskDropped resolves the Future of a task that was queued but never
	// started before ShutdownImmediate discarded it. See SPEC_FULL.md's open
	// question resolution for why this implementation satisfies the future
	// rather than leaving it to hang.
	ErrTaskDropped = errors.New("threadpool: task discarded by immediate shutdown")

	// ErrFutureNotReady is returned by Future.TryGet when the task has not
	// completed yet.
	ErrFutureNotReady = errors.New("threadpool: future is not ready")
)

// PanicError wraps a value recovered from a panicking task so that it can
// flow through a Future's error channel without losing the original value.
type PanicError struct {
	Value      any
	StackTrace []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("threadpool: task panicked: %v", e.Value)
}

// Unwrap allows errors.As to reach an underlying error value, if the panic
// value happened to be one.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
