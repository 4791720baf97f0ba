// Package threadpool provides a fixed-size, priority-aware worker pool for
// running CPU-bound and short blocking work inside a single Go process.
//
// Tasks are submitted at one of three static priorities. PriorityHigh tasks
// are routed through a single shared min-heap and are always picked up
// ahead of queued PriorityMedium/PriorityLow work. PriorityMedium and
// PriorityLow tasks are spread round-robin across per-worker local deques;
// an idle worker that finds its own deque empty steals from a randomly
// chosen peer before parking. This design mirrors a classic work-stealing
// thread pool, adapted from a single global run queue into the hybrid
// global-heap-plus-local-deques topology described in this module's design
// notes.
//
// # Quick start
//
//	pool, err := threadpool.NewPool(4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.ShutdownImmediate()
//
//	future, err := threadpool.Submit(pool, func(ctx context.Context) (int, error) {
//		return 42, nil
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := future.Get(context.Background())
//
// # Priority
//
// Use SubmitPriority to route a task through the global heap instead of a
// worker's local deque:
//
//	future, err := threadpool.SubmitPriority(pool, threadpool.PriorityHigh, fn)
//
// # Shutdown
//
// ShutdownGraceful drains queued and in-flight work before returning.
// ShutdownImmediate discards anything not already running and resolves
// those tasks' Futures with ErrTaskDropped.
package threadpool
