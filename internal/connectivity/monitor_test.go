package connectivity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Offline
	}
}

func expectNone(t *testing.T, ch <-chan State) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected event %v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func recordEvents(m *Monitor) <-chan State {
	events := make(chan State, 16)
	m.OnBecameOnline(func() { events <- Online })
	m.OnBecameOffline(func() { events <- Offline })
	return events
}

func TestStateString(t *testing.T) {
	if Online.String() != "online" || Offline.String() != "offline" {
		t.Errorf("got %q and %q", Online, Offline)
	}
}

func TestMonitorEdgeTriggered(t *testing.T) {
	m := NewMonitor(Offline)
	defer m.Close()
	events := recordEvents(m)

	if m.IsOnline() {
		t.Fatal("new monitor should be offline")
	}

	if !m.Set(Online) {
		t.Fatal("offline -> online should be a transition")
	}
	if got := waitFor(t, events); got != Online {
		t.Fatalf("got %v, want online", got)
	}
	if !m.IsOnline() {
		t.Error("IsOnline should be true after Set(Online)")
	}

	// Same state again is not an edge
	if m.Set(Online) {
		t.Error("repeated Set(Online) reported a transition")
	}
	expectNone(t, events)

	m.Set(Offline)
	if got := waitFor(t, events); got != Offline {
		t.Fatalf("got %v, want offline", got)
	}
	m.Set(Offline)
	expectNone(t, events)
}

func TestMonitorInitialStateFiresNothing(t *testing.T) {
	m := NewMonitor(Online)
	defer m.Close()
	events := recordEvents(m)

	if !m.IsOnline() {
		t.Fatal("monitor should start online")
	}
	expectNone(t, events)
}

func TestMonitorPreservesOrder(t *testing.T) {
	m := NewMonitor(Offline)
	defer m.Close()

	var mu sync.Mutex
	var seen []State
	done := make(chan struct{})
	record := func(s State) func() {
		return func() {
			mu.Lock()
			seen = append(seen, s)
			n := len(seen)
			mu.Unlock()
			if n == 6 {
				close(done)
			}
		}
	}
	m.OnBecameOnline(record(Online))
	m.OnBecameOffline(record(Offline))

	for i := 0; i < 3; i++ {
		m.Set(Online)
		m.Set(Offline)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, s := range seen {
		want := Online
		if i%2 == 1 {
			want = Offline
		}
		if s != want {
			t.Fatalf("event %d = %v, want %v (all: %v)", i, s, want, seen)
		}
	}
}

func TestMonitorClose(t *testing.T) {
	m := NewMonitor(Offline)
	events := recordEvents(m)
	m.Close()
	m.Close()

	if m.Set(Online) {
		t.Error("Set after Close reported a transition")
	}
	expectNone(t, events)
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (f *fakePinger) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func TestProberProbeOnce(t *testing.T) {
	m := NewMonitor(Offline)
	defer m.Close()
	events := recordEvents(m)

	pinger := &fakePinger{}
	p := NewProber(pinger, m, time.Minute)

	if got := p.ProbeOnce(context.Background()); got != Online {
		t.Fatalf("ProbeOnce = %v, want online", got)
	}
	waitFor(t, events)

	pinger.set(errors.New("connection refused"))
	if got := p.ProbeOnce(context.Background()); got != Offline {
		t.Fatalf("ProbeOnce = %v, want offline", got)
	}
	if got := waitFor(t, events); got != Offline {
		t.Fatalf("event = %v, want offline", got)
	}
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestProberTimeout(t *testing.T) {
	m := NewMonitor(Online)
	defer m.Close()

	p := NewProber(slowPinger{}, m, 20*time.Millisecond)
	start := time.Now()
	if got := p.ProbeOnce(context.Background()); got != Offline {
		t.Fatalf("hung ping should count as offline, got %v", got)
	}
	if time.Since(start) > time.Second {
		t.Error("probe did not respect its timeout")
	}
}

func TestProberRun(t *testing.T) {
	m := NewMonitor(Offline)
	defer m.Close()
	events := recordEvents(m)

	pinger := &fakePinger{}
	p := NewProber(pinger, m, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(finished)
	}()

	if got := waitFor(t, events); got != Online {
		t.Fatalf("first event = %v, want online", got)
	}
	pinger.set(errors.New("down"))
	if got := waitFor(t, events); got != Offline {
		t.Fatalf("second event = %v, want offline", got)
	}

	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
