package threadpool

import (
	"context"

	"github.com/Pumkinmarble/threadpool/core"
)

// Re-export the core package's public surface so most callers only need to
// import the root threadpool package.

// Priority is the static scheduling class assigned to a task at submission time.
type Priority = core.Priority

const (
	PriorityHigh   = core.PriorityHigh
	PriorityMedium = core.PriorityMedium
	PriorityLow    = core.PriorityLow
)

// Pool is a fixed-size collection of worker goroutines.
type Pool = core.Pool

// PoolConfig holds configuration options for a Pool.
type PoolConfig = core.PoolConfig

// Option configures a collaborator of a Pool built with NewPool.
type Option = core.Option

// Future is the result handle returned by Submit/SubmitPriority.
type Future[T any] = core.Future[T]

// TaskID identifies one submitted task for observability purposes.
type TaskID = core.TaskID

// TaskExecutionRecord captures one completed task execution for diagnostics.
type TaskExecutionRecord = core.TaskExecutionRecord

// Stats is the counter snapshot returned by Pool.Stats.
type Stats = core.Stats

// Logger, Metrics, PanicHandler and RejectedTaskHandler are the Pool's
// pluggable observability collaborators.
type (
	Logger              = core.Logger
	Metrics             = core.Metrics
	PanicHandler        = core.PanicHandler
	RejectedTaskHandler = core.RejectedTaskHandler
	Field               = core.Field
)

var (
	// NewPool constructs a Pool with n worker goroutines and starts them immediately.
	NewPool = core.NewPool

	// NewPoolFromConfig constructs a Pool from a PoolConfig.
	NewPoolFromConfig = core.NewPoolFromConfig

	// LoadPoolConfigFromEnv populates a PoolConfig from process environment variables.
	LoadPoolConfigFromEnv = core.LoadPoolConfigFromEnv

	// LoadPoolConfigFromYAML reads a PoolConfig from a YAML file.
	LoadPoolConfigFromYAML = core.LoadPoolConfigFromYAML

	// DefaultPoolConfig returns a config with sensible defaults.
	DefaultPoolConfig = core.DefaultPoolConfig

	// WithLogger, WithMetrics, WithPanicHandler, WithRejectedTaskHandler,
	// WithHistoryCapacity and WithIdlePollInterval configure a Pool built
	// with NewPool.
	WithLogger              = core.WithLogger
	WithMetrics             = core.WithMetrics
	WithPanicHandler        = core.WithPanicHandler
	WithRejectedTaskHandler = core.WithRejectedTaskHandler
	WithHistoryCapacity     = core.WithHistoryCapacity
	WithIdlePollInterval    = core.WithIdlePollInterval

	// F creates a new Field for structured logging.
	F = core.F

	// GenerateTaskID returns a fresh, non-zero TaskID.
	GenerateTaskID = core.GenerateTaskID
)

// Sentinel errors returned by this package's operations.
var (
	ErrInvalidWorkerCount = core.ErrInvalidWorkerCount
	ErrPoolStopped        = core.ErrPoolStopped
	ErrTaskDropped        = core.ErrTaskDropped
	ErrFutureNotReady     = core.ErrFutureNotReady
)

// PanicError wraps a value recovered from a panicking task.
type PanicError = core.PanicError

// Submit enqueues f at PriorityMedium and returns a Future for its result.
func Submit[T any](p *Pool, f func(context.Context) (T, error)) (*Future[T], error) {
	return core.Submit(p, f)
}

// SubmitPriority enqueues f at the given priority and returns a Future for its result.
func SubmitPriority[T any](p *Pool, priority Priority, f func(context.Context) (T, error)) (*Future[T], error) {
	return core.SubmitPriority(p, priority, f)
}
