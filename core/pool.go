package core

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// defaultIdlePollInterval bounds how long a parked worker sleeps before
// re-polling the queues even without a wake signal, the liveness backstop
// described in SPEC_FULL.md §4.3.
const defaultIdlePollInterval = 10 * time.Millisecond

const (
	stateRunning int32 = iota
	stateDraining
	stateStopped
)

// Option configures a collaborator of a Pool built with NewPool. Workers is
// set directly through NewPool's n argument, not through an Option, mirroring
// the distilled construct(N) signature; Options only touch ancillary
// collaborators, the same division flock's functional-options Config draws
// between its constructor argument and Config fields.
type Option func(*PoolConfig)

// WithLogger overrides the Pool's Logger collaborator.
func WithLogger(l Logger) Option { return func(c *PoolConfig) { c.Logger = l } }

// WithMetrics overrides the Pool's Metrics collaborator.
func WithMetrics(m Metrics) Option { return func(c *PoolConfig) { c.Metrics = m } }

// WithPanicHandler overrides the Pool's PanicHandler collaborator.
func WithPanicHandler(h PanicHandler) Option { return func(c *PoolConfig) { c.PanicHandler = h } }

// WithRejectedTaskHandler overrides the Pool's RejectedTaskHandler collaborator.
func WithRejectedTaskHandler(h RejectedTaskHandler) Option {
	return func(c *PoolConfig) { c.RejectedTaskHandler = h }
}

// WithHistoryCapacity overrides how many TaskExecutionRecords RecentHistory retains.
func WithHistoryCapacity(n int) Option { return func(c *PoolConfig) { c.HistoryCapacity = n } }

// WithIdlePollInterval overrides the bounded idle wait each parked worker uses.
func WithIdlePollInterval(d time.Duration) Option {
	return func(c *PoolConfig) { c.IdlePollInterval = d }
}

// Pool is a fixed-size collection of worker goroutines that execute
// submitted tasks under a three-class static priority scheme: a single
// global heap for PriorityHigh work, and per-worker local deques shared by
// PriorityMedium/PriorityLow work with randomized work-stealing between
// them. See SPEC_FULL.md §4 for the full topology this adapts from the
// host library's TaskScheduler and original_source/thread_pool.cpp.
type Pool struct {
	cfg     *PoolConfig
	workers []*worker
	global  *globalQueue
	wake    chan struct{}

	roundRobin atomic.Uint64
	state      atomic.Int32

	submitted atomic.Int64
	completed atomic.Int64
	stolen    atomic.Int64
	rejected  atomic.Int64
	active    atomic.Int64
	pending   atomic.Int64

	history executionHistory

	waitMu   sync.Mutex
	waitCond *sync.Cond

	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	shutdownMu sync.Mutex
	stopped    bool
}

// NewPool constructs a Pool with n worker goroutines and starts them
// immediately. Options configure ancillary collaborators; see
// DefaultPoolConfig for their defaults.
func NewPool(n int, opts ...Option) (*Pool, error) {
	cfg := DefaultPoolConfig()
	cfg.Workers = n
	for _, opt := range opts {
		opt(cfg)
	}
	return newPoolFromConfig(cfg)
}

// NewPoolFromConfig constructs a Pool from a PoolConfig, such as one loaded
// with LoadPoolConfigFromEnv or LoadPoolConfigFromYAML. cfg is not retained;
// the Pool copies what it needs.
func NewPoolFromConfig(cfg *PoolConfig) (*Pool, error) {
	clone := *cfg
	return newPoolFromConfig(&clone)
}

func newPoolFromConfig(cfg *PoolConfig) (*Pool, error) {
	if cfg.Workers < 1 {
		return nil, ErrInvalidWorkerCount
	}
	cfg.applyDefaults()

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		cfg:     cfg,
		global:  newGlobalQueue(),
		wake:    make(chan struct{}, cfg.Workers*2),
		history: newExecutionHistory(cfg.HistoryCapacity),
		ctx:     ctx,
		cancel:  cancel,
	}
	p.waitCond = sync.NewCond(&p.waitMu)

	p.workers = make([]*worker, cfg.Workers)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}

	p.wg.Add(cfg.Workers)
	for _, w := range p.workers {
		go w.run()
	}

	cfg.Logger.Info("pool started", F("workers", cfg.Workers))
	return p, nil
}

func (p *Pool) isAcceptingWork() bool {
	return p.state.Load() == stateRunning
}

// Submit enqueues f at PriorityMedium and returns a Future for its result.
func Submit[T any](p *Pool, f func(context.Context) (T, error)) (*Future[T], error) {
	return SubmitPriority(p, PriorityMedium, f)
}

// SubmitPriority enqueues f at the given priority and returns a Future for
// its result. It fails with ErrPoolStopped if the pool is draining or
// stopped; submissions racing with a concurrent shutdown call may either
// fail this way or succeed and be drained, per SPEC_FULL.md §4.6.
func SubmitPriority[T any](p *Pool, priority Priority, f func(context.Context) (T, error)) (*Future[T], error) {
	if !p.isAcceptingWork() {
		p.rejected.Add(1)
		p.cfg.Metrics.RecordTaskRejected("pool not running")
		p.cfg.RejectedTaskHandler.HandleRejectedTask("pool not running")
		return nil, ErrPoolStopped
	}

	future := NewFuture[T]()

	run := func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				var zero T
				future.resolve(zero, &PanicError{Value: r, StackTrace: buf[:n]})
				panic(r)
			}
		}()
		value, err := f(ctx)
		future.resolve(value, err)
	}

	env := newEnvelope(run, priority, "")
	env.drop = func() {
		var zero T
		future.resolve(zero, ErrTaskDropped)
	}

	p.submitted.Add(1)
	p.pending.Add(1)
	p.active.Add(1)

	p.enqueue(env)

	return future, nil
}

func (p *Pool) enqueue(env *envelope) {
	if env.priority == PriorityHigh {
		p.global.push(env)
		p.cfg.Metrics.RecordQueueDepth("global", p.global.size())
		p.notifyOne()
		return
	}

	k := int(p.roundRobin.Add(1) % uint64(len(p.workers)))
	p.workers[k].deque.push(env)
	p.cfg.Metrics.RecordQueueDepth(workerQueueLabel(k), p.workers[k].deque.size())
	p.notifyOne()
}

// NumWorkers reports the fixed number of worker goroutines.
func (p *Pool) NumWorkers() int { return len(p.workers) }

// ActiveTasks reports tasks currently submitted and not yet completed or
// dropped, including those still queued.
func (p *Pool) ActiveTasks() int64 { return p.active.Load() }

// PendingTasks reports tasks not yet completed or dropped. In this
// implementation it is always equal to ActiveTasks; both are exposed for
// symmetry with SPEC_FULL.md's external interface.
func (p *Pool) PendingTasks() int64 { return p.pending.Load() }

// Stats returns a snapshot of the pool's cumulative counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Stolen:    p.stolen.Load(),
		Rejected:  p.rejected.Load(),
		Active:    p.active.Load(),
		Pending:   p.pending.Load(),
	}
}

// RecentHistory returns up to limit of the most recently completed task
// records, most recent first. limit <= 0 returns every retained record.
func (p *Pool) RecentHistory(limit int) []TaskExecutionRecord {
	return p.history.recent(limit)
}

// WaitAll blocks until every submitted task has completed or been dropped,
// or until ctx is done, whichever comes first. It may also return early if
// a concurrent shutdown drains the pool to quiescence.
func (p *Pool) WaitAll(ctx context.Context) error {
	done := make(chan struct{})
	var abandoned atomic.Bool
	go func() {
		p.waitMu.Lock()
		for p.pending.Load() != 0 && !abandoned.Load() {
			p.waitCond.Wait()
		}
		p.waitMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		abandoned.Store(true)
		p.waitCond.Broadcast()
		return ctx.Err()
	}
}

// ShutdownGraceful transitions the pool to StateDraining, refusing new
// submissions, then blocks until every queued and in-flight task has
// finished (or ctx is done) before transitioning to StateStopped.
func (p *Pool) ShutdownGraceful(ctx context.Context) error {
	p.state.CompareAndSwap(stateRunning, stateDraining)
	p.notifyAll()

	if err := p.WaitAll(ctx); err != nil {
		return err
	}

	p.finalizeShutdown()
	return nil
}

// ShutdownImmediate transitions the pool straight to StateStopped, discards
// every not-yet-started queued task (resolving their Futures with
// ErrTaskDropped per SPEC_FULL.md's open-question resolution), and cancels
// the context passed to in-flight task executions, then waits for running
// tasks to return.
func (p *Pool) ShutdownImmediate() {
	p.state.Store(stateStopped)
	p.cancel()
	p.notifyAll()

	dropped := p.global.drain()
	for _, w := range p.workers {
		dropped = append(dropped, w.deque.drain()...)
	}
	for _, env := range dropped {
		p.cfg.Logger.Warn("dropping queued task on immediate shutdown", F("task", env.id.String()))
		p.dropEnvelope(env)
	}

	p.finalizeShutdown()
}

func (p *Pool) dropEnvelope(env *envelope) {
	p.pending.Add(-1)
	p.active.Add(-1)
	p.rejected.Add(1)
	p.cfg.Metrics.RecordTaskRejected("dropped by immediate shutdown")

	if env.drop != nil {
		env.drop()
	}

	p.waitMu.Lock()
	p.waitCond.Broadcast()
	p.waitMu.Unlock()
}

func (p *Pool) finalizeShutdown() {
	p.shutdownMu.Lock()
	defer p.shutdownMu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.state.Store(stateStopped)
	p.notifyAll()
	p.wg.Wait()
	p.cancel()
	p.cfg.Logger.Info("pool stopped", F("completed", p.completed.Load()), F("rejected", p.rejected.Load()))
}

// Close performs a graceful shutdown (see ShutdownGraceful) and satisfies
// io.Closer. On a pool that is already stopped it returns nil without
// further effect.
func (p *Pool) Close() error {
	return p.ShutdownGraceful(context.Background())
}

func (p *Pool) notifyOne() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pool) notifyAll() {
	for i := 0; i < cap(p.wake); i++ {
		select {
		case p.wake <- struct{}{}:
		default:
			return
		}
	}
}

func workerQueueLabel(id int) string {
	return fmt.Sprintf("worker-%d", id)
}

// worker is one of a Pool's fixed set of goroutines. Each owns a private
// local deque and a private PRNG used only for choosing steal targets.
type worker struct {
	id    int
	pool  *Pool
	deque *localDeque
	rng   *rand.Rand
}

func newWorker(id int, pool *Pool) *worker {
	return &worker{
		id:    id,
		pool:  pool,
		deque: newLocalDeque(),
		rng:   rand.New(rand.NewPCG(seedWord(), seedWord())),
	}
}

// seedWord draws 8 bytes from a cryptographically random source to seed a
// worker's math/rand/v2 generator, playing the same role the original
// implementation's std::random_device does for its per-worker mt19937.
func seedWord() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

func (w *worker) run() {
	defer w.pool.wg.Done()

	for {
		if env, stolen, ok := w.pool.getTask(w); ok {
			w.execute(env, stolen)
			continue
		}

		state := w.pool.state.Load()
		if state == stateStopped {
			return
		}
		if state == stateDraining && w.pool.pending.Load() == 0 {
			return
		}

		w.pool.parkIdle()
	}
}

// getTask polls the pool's queues in the fixed order SPEC_FULL.md §4.3
// mandates: the global heap first (so HIGH work always preempts), then the
// worker's own deque, then a randomized steal attempt against its peers.
func (p *Pool) getTask(w *worker) (*envelope, bool, bool) {
	if env, ok := p.global.popTop(); ok {
		return env, false, true
	}
	if env, ok := w.deque.pop(); ok {
		return env, false, true
	}
	if env, ok := p.trySteal(w); ok {
		return env, true, true
	}
	return nil, false, false
}

func (p *Pool) trySteal(w *worker) (*envelope, bool) {
	n := len(p.workers)
	if n <= 1 {
		return nil, false
	}

	start := w.rng.IntN(n)
	for i := 0; i < n; i++ {
		target := (start + i) % n
		if target == w.id {
			continue
		}
		if env, ok := p.workers[target].deque.steal(); ok {
			return env, true
		}
	}
	return nil, false
}

func (p *Pool) parkIdle() {
	select {
	case <-p.wake:
	case <-time.After(p.cfg.IdlePollInterval):
	}
}

func (w *worker) execute(env *envelope, stolen bool) {
	startedAt := time.Now()
	panicErr := runWithRecover(w.pool.ctx, env.run)
	finishedAt := time.Now()

	w.pool.cfg.Metrics.RecordTaskDuration(env.priority, finishedAt.Sub(startedAt))

	panicked := panicErr != nil
	if panicked {
		pe, _ := panicErr.(*PanicError)
		w.pool.cfg.Metrics.RecordTaskPanic(pe.Value)
		w.pool.cfg.PanicHandler.HandlePanic(w.id, env.id, pe.Value, pe.StackTrace)
		w.pool.cfg.Logger.Error("task panicked",
			F("task", env.id.String()), F("worker", w.id), F("panic", pe.Value))
	}

	w.pool.active.Add(-1)
	w.pool.pending.Add(-1)
	w.pool.completed.Add(1)

	if stolen {
		w.pool.stolen.Add(1)
		w.pool.cfg.Metrics.RecordSteal()
	}

	w.pool.history.add(TaskExecutionRecord{
		TaskID:     env.id,
		Name:       env.name,
		Priority:   env.priority,
		WorkerID:   w.id,
		Stolen:     stolen,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Panicked:   panicked,
	})

	w.pool.waitMu.Lock()
	w.pool.waitCond.Broadcast()
	w.pool.waitMu.Unlock()
}
