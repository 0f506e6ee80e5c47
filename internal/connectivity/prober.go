package connectivity

import (
	"context"
	"time"

	"github.com/existflow/tasksync/internal/logger"
)

// DefaultProbeTimeout bounds a single reachability check
const DefaultProbeTimeout = 3 * time.Second

// Pinger is anything that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober turns periodic pings into monitor observations
type Prober struct {
	target   Pinger
	monitor  *Monitor
	interval time.Duration
	timeout  time.Duration
}

// NewProber creates a prober that checks target every interval
func NewProber(target Pinger, monitor *Monitor, interval time.Duration) *Prober {
	timeout := DefaultProbeTimeout
	if interval > 0 && interval < timeout {
		timeout = interval
	}
	return &Prober{
		target:   target,
		monitor:  monitor,
		interval: interval,
		timeout:  timeout,
	}
}

// ProbeOnce pings the target and records the result
func (p *Prober) ProbeOnce(ctx context.Context) State {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	state := Online
	err := p.target.Ping(ctx)
	if err != nil {
		state = Offline
	}

	if p.monitor.Set(state) {
		if err != nil {
			logger.Info("Remote unreachable, working offline", logger.F("error", err))
		} else {
			logger.Info("Remote reachable, back online")
		}
	}
	return state
}

// Run probes immediately and then on every tick until ctx is done
func (p *Prober) Run(ctx context.Context) {
	p.ProbeOnce(ctx)
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.ProbeOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}
