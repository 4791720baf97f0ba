package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: called when a task panics during execution.
// =============================================================================

// PanicHandler is invoked when a worker recovers a panic from a task.
// Implementations should be safe for concurrent use; they may be called from
// any worker goroutine.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// workerID identifies which worker observed the panic; panicInfo is the
	// recovered value; stackTrace is the stack captured at recovery time.
	HandlePanic(workerID int, taskID TaskID, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler prints panic information to stdout with fmt.Printf.
// It is the default when no PanicHandler is configured.
type DefaultPanicHandler struct{}

func (h *DefaultPanicHandler) HandlePanic(workerID int, taskID TaskID, panicInfo any, stackTrace []byte) {
	fmt.Printf("[worker %d] task %s panicked: %v\n%s", workerID, taskID, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: observability hook for task execution and queue state.
// =============================================================================

// Metrics defines the interface for collecting task execution metrics.
// Implementations can forward these to monitoring systems (Prometheus,
// StatsD, etc). All methods should be non-blocking and fast.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(priority Priority, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(panicInfo any)

	// RecordQueueDepth records the current depth of one queue. source is
	// "global" or "worker-<n>".
	RecordQueueDepth(source string, depth int)

	// RecordTaskRejected records that a submission was rejected.
	RecordTaskRejected(reason string)

	// RecordSteal records a successful steal.
	RecordSteal()
}

// NilMetrics is a no-op Metrics implementation, the default when none is
// configured.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(priority Priority, duration time.Duration) {}
func (m *NilMetrics) RecordTaskPanic(panicInfo any)                                {}
func (m *NilMetrics) RecordQueueDepth(source string, depth int)                    {}
func (m *NilMetrics) RecordTaskRejected(reason string)                             {}
func (m *NilMetrics) RecordSteal()                                                 {}

// =============================================================================
// RejectedTaskHandler: called when a submission is refused.
// =============================================================================

// RejectedTaskHandler is called when Submit/SubmitPriority refuses a task,
// which currently only happens because the pool is draining or stopped.
type RejectedTaskHandler interface {
	HandleRejectedTask(reason string)
}

// DefaultRejectedTaskHandler logs the rejection to stdout.
type DefaultRejectedTaskHandler struct{}

func (h *DefaultRejectedTaskHandler) HandleRejectedTask(reason string) {
	fmt.Printf("[threadpool] task rejected: %s\n", reason)
}

// =============================================================================
// PoolConfig: runtime configuration for a Pool's collaborators.
// =============================================================================

// PoolConfig holds configuration options for a Pool. Zero-value fields fall
// back to defaults; see DefaultPoolConfig.
type PoolConfig struct {
	// Workers is the number of worker goroutines to spawn. Must be >= 1.
	Workers int `env:"THREADPOOL_WORKERS" yaml:"workers"`

	// HistoryCapacity bounds the number of recent TaskExecutionRecords kept
	// for RecentHistory. Zero or negative values fall back to the default
	// of 100; history tracking cannot be turned off through this field.
	HistoryCapacity int `env:"THREADPOOL_HISTORY_CAPACITY" yaml:"historyCapacity"`

	// IdlePollInterval is the bounded wait each parked worker uses before
	// re-polling the queues, per SPEC_FULL.md §4.3. Defaults to 10ms.
	IdlePollInterval time.Duration `env:"THREADPOOL_IDLE_POLL_INTERVAL" yaml:"idlePollInterval"`

	PanicHandler        PanicHandler        `env:"-" yaml:"-"`
	Metrics             Metrics             `env:"-" yaml:"-"`
	RejectedTaskHandler RejectedTaskHandler `env:"-" yaml:"-"`
	Logger              Logger              `env:"-" yaml:"-"`
}

// DefaultPoolConfig returns a config with sensible defaults and non-nil
// collaborators.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Workers:             1,
		HistoryCapacity:     defaultTaskHistoryCapacity,
		IdlePollInterval:    defaultIdlePollInterval,
		PanicHandler:        &DefaultPanicHandler{},
		Metrics:             &NilMetrics{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
		Logger:              NewDefaultLogger(),
	}
}

// applyDefaults fills any zero-valued field of cfg from DefaultPoolConfig,
// leaving explicitly set fields untouched. Workers is a required argument
// with no valid default and is not touched here; callers must validate it
// themselves before constructing a Pool.
func (cfg *PoolConfig) applyDefaults() {
	defaults := DefaultPoolConfig()

	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = defaults.HistoryCapacity
	}
	if cfg.IdlePollInterval <= 0 {
		cfg.IdlePollInterval = defaults.IdlePollInterval
	}
	if cfg.PanicHandler == nil {
		cfg.PanicHandler = defaults.PanicHandler
	}
	if cfg.Metrics == nil {
		cfg.Metrics = defaults.Metrics
	}
	if cfg.RejectedTaskHandler == nil {
		cfg.RejectedTaskHandler = defaults.RejectedTaskHandler
	}
	if cfg.Logger == nil {
		cfg.Logger = defaults.Logger
	}
}
