package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Pumkinmarble/threadpool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides a pool's current stats snapshot. *core.Pool
// satisfies this directly.
type PoolSnapshotProvider interface {
	Stats() core.Stats
	NumWorkers() int
}

// SnapshotPoller periodically exports Pool.Stats() snapshots into Prometheus
// gauges, for collaborators that would rather poll than push on every task
// completion.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolSubmitted *prom.GaugeVec
	poolCompleted *prom.GaugeVec
	poolStolen    *prom.GaugeVec
	poolRejected  *prom.GaugeVec
	poolActive    *prom.GaugeVec
	poolPending   *prom.GaugeVec
	poolWorkers   *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolSubmitted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadpool",
		Name:      "pool_submitted_total",
		Help:      "Cumulative submitted task count snapshot.",
	}, []string{"pool"})
	poolCompleted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadpool",
		Name:      "pool_completed_total",
		Help:      "Cumulative completed task count snapshot.",
	}, []string{"pool"})
	poolStolen := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadpool",
		Name:      "pool_stolen_total",
		Help:      "Cumulative stolen task count snapshot.",
	}, []string{"pool"})
	poolRejected := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadpool",
		Name:      "pool_rejected_total",
		Help:      "Cumulative rejected or dropped task count snapshot.",
	}, []string{"pool"})
	poolActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadpool",
		Name:      "pool_active",
		Help:      "Active task count snapshot.",
	}, []string{"pool"})
	poolPending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadpool",
		Name:      "pool_pending",
		Help:      "Pending task count snapshot.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadpool",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})

	var err error
	if poolSubmitted, err = registerCollector(reg, poolSubmitted); err != nil {
		return nil, err
	}
	if poolCompleted, err = registerCollector(reg, poolCompleted); err != nil {
		return nil, err
	}
	if poolStolen, err = registerCollector(reg, poolStolen); err != nil {
		return nil, err
	}
	if poolRejected, err = registerCollector(reg, poolRejected); err != nil {
		return nil, err
	}
	if poolActive, err = registerCollector(reg, poolActive); err != nil {
		return nil, err
	}
	if poolPending, err = registerCollector(reg, poolPending); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:      interval,
		pools:         make(map[string]PoolSnapshotProvider),
		poolSubmitted: poolSubmitted,
		poolCompleted: poolCompleted,
		poolStolen:    poolStolen,
		poolRejected:  poolRejected,
		poolActive:    poolActive,
		poolPending:   poolPending,
		poolWorkers:   poolWorkers,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolSubmitted.WithLabelValues(name).Set(float64(stats.Submitted))
		p.poolCompleted.WithLabelValues(name).Set(float64(stats.Completed))
		p.poolStolen.WithLabelValues(name).Set(float64(stats.Stolen))
		p.poolRejected.WithLabelValues(name).Set(float64(stats.Rejected))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolPending.WithLabelValues(name).Set(float64(stats.Pending))
		p.poolWorkers.WithLabelValues(name).Set(float64(provider.NumWorkers()))
	}
}
