package sync

import (
	"sync"
	"time"

	"github.com/existflow/tasksync/internal/logger"
)

// Monitor is the part of connectivity.Monitor that AutoSync needs
type Monitor interface {
	IsOnline() bool
	OnBecameOnline(fn func())
}

// AutoSync manages automatic background reconciliation
type AutoSync struct {
	engine       *Engine
	monitor      Monitor
	pollInterval time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewAutoSync reconciles on every offline -> online transition and, while
// online, every pollInterval. A zero interval disables periodic passes.
// If the monitor is already online a pass is queued right away, so a
// transition that happened before registration is not lost.
func NewAutoSync(engine *Engine, monitor Monitor, pollInterval time.Duration) *AutoSync {
	a := &AutoSync{
		engine:       engine,
		monitor:      monitor,
		pollInterval: pollInterval,
		stopCh:       make(chan struct{}),
	}

	monitor.OnBecameOnline(a.onBecameOnline)
	if monitor.IsOnline() {
		engine.ReconcileAsync()
	}

	if pollInterval > 0 {
		a.wg.Add(1)
		go a.pollLoop()
	}

	return a
}

func (a *AutoSync) onBecameOnline() {
	select {
	case <-a.stopCh:
		return
	default:
	}
	logger.Info("Back online, reconciling")
	a.engine.ReconcileAsync()
}

// pollLoop periodically reconciles while online
func (a *AutoSync) pollLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.monitor.IsOnline() {
				a.engine.ReconcileAsync()
			}
		case <-a.stopCh:
			return
		}
	}
}

// Stop stops periodic passes. Passes already queued still run.
func (a *AutoSync) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
	a.wg.Wait()
}
