// Package connectivity tracks whether the remote store is believed reachable
// and notifies listeners when that belief changes.
package connectivity

import (
	"sync"
	"sync/atomic"
)

// State is the current connectivity belief
type State int32

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// Monitor holds the connectivity state and dispatches edge events.
// Handlers run one at a time on the monitor's own goroutine, in the
// order the transitions happened. A handler must not block.
type Monitor struct {
	state atomic.Int32

	hmu       sync.RWMutex
	onOnline  []func()
	onOffline []func()

	qmu     sync.Mutex
	pending []State
	closed  bool

	notify chan struct{}
	quit   chan struct{}
	done   chan struct{}
}

// NewMonitor creates a monitor starting in the given state.
// No event fires for the initial state.
func NewMonitor(initial State) *Monitor {
	m := &Monitor{
		notify: make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	m.state.Store(int32(initial))
	go m.dispatch()
	return m
}

// IsOnline returns the current belief. It never blocks.
func (m *Monitor) IsOnline() bool {
	return m.State() == Online
}

// State returns the current state
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Set records a new observation. Handlers fire only if the state changed;
// repeated observations of the same state are ignored. Set reports whether
// a transition happened.
func (m *Monitor) Set(s State) bool {
	m.qmu.Lock()
	if m.closed || State(m.state.Load()) == s {
		m.qmu.Unlock()
		return false
	}
	m.state.Store(int32(s))
	m.pending = append(m.pending, s)
	m.qmu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// OnBecameOnline registers fn to run on every offline -> online transition
func (m *Monitor) OnBecameOnline(fn func()) {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// OnBecameOffline registers fn to run on every online -> offline transition
func (m *Monitor) OnBecameOffline(fn func()) {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.onOffline = append(m.onOffline, fn)
}

func (m *Monitor) dispatch() {
	defer close(m.done)

	for {
		select {
		case <-m.notify:
			for _, s := range m.drain() {
				m.fire(s)
			}
		case <-m.quit:
			return
		}
	}
}

func (m *Monitor) drain() []State {
	m.qmu.Lock()
	defer m.qmu.Unlock()
	events := m.pending
	m.pending = nil
	return events
}

func (m *Monitor) fire(s State) {
	m.hmu.RLock()
	var handlers []func()
	if s == Online {
		handlers = append(handlers, m.onOnline...)
	} else {
		handlers = append(handlers, m.onOffline...)
	}
	m.hmu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}

// Close stops dispatching. Transitions not yet dispatched are dropped.
func (m *Monitor) Close() {
	m.qmu.Lock()
	if m.closed {
		m.qmu.Unlock()
		return
	}
	m.closed = true
	m.qmu.Unlock()

	close(m.quit)
	<-m.done
}
