package core

import (
	"context"
	"reflect"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// Task is the type-erased, nullary unit of deferred work that flows through
// the pool's queues. Submit/SubmitPriority build one of these around the
// caller's typed callable and a completion hook that resolves a Future.
type Task func(ctx context.Context)

// TaskID identifies one submitted task for observability purposes (history,
// logging, metrics). It is generated once per submission and never reused.
type TaskID struct {
	id uuid.UUID
}

// GenerateTaskID returns a fresh, non-zero TaskID.
func GenerateTaskID() TaskID {
	return TaskID{id: uuid.New()}
}

// IsZero reports whether this is the unset TaskID value.
func (t TaskID) IsZero() bool {
	return t.id == uuid.Nil
}

// String renders the TaskID's canonical UUID form.
func (t TaskID) String() string {
	return t.id.String()
}

// envelope is the owned, queue-resident representation of one submission.
// It is handed by reference between queues and the worker that executes it,
// and is eligible for collection as soon as run() returns.
type envelope struct {
	id        TaskID
	priority  Priority
	name      string
	createdAt time.Time
	run       Task

	// drop resolves this envelope's Future with ErrTaskDropped without
	// running the underlying task. Set by SubmitPriority, which is the only
	// place that knows the Future's type parameter; invoked by the pool
	// when ShutdownImmediate discards a still-queued envelope.
	drop func()
}

// resolveTaskName derives a human-readable name for a task, preferring an
// explicit name over the function's resolved symbol name.
func resolveTaskName(task Task, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if task == nil {
		return "anonymous"
	}

	v := reflect.ValueOf(task)
	if v.Kind() != reflect.Func {
		return "anonymous"
	}

	pc := v.Pointer()
	if pc == 0 {
		return "anonymous"
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "anonymous"
	}

	name := fn.Name()
	if name == "" {
		return "anonymous"
	}
	return name
}

// newEnvelope builds an envelope around run, assigning it a fresh TaskID and
// resolving its observable name.
func newEnvelope(run Task, priority Priority, explicitName string) *envelope {
	return &envelope{
		id:        GenerateTaskID(),
		priority:  priority,
		name:      resolveTaskName(run, explicitName),
		createdAt: time.Now(),
		run:       run,
	}
}

// runWithRecover executes task, converting any panic into a PanicError
// instead of letting it escape the worker goroutine.
func runWithRecover(ctx context.Context, task Task) (panicErr error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			panicErr = &PanicError{Value: r, StackTrace: buf[:n]}
		}
	}()
	task(ctx)
	return nil
}
