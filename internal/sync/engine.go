package sync

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/tasksync/internal/db"
	"github.com/existflow/tasksync/internal/logger"
	"github.com/existflow/tasksync/internal/model"
	"github.com/existflow/tasksync/internal/remote"
)

var (
	// ErrEmptyText is returned when adding a task with blank text
	ErrEmptyText = errors.New("task text is empty")

	// ErrClosed is returned for operations submitted after Close
	ErrClosed = errors.New("sync engine closed")
)

// sync_state keys written after every reconciliation pass
const (
	StateLastReconcile = "last_reconcile" // RFC3339 time of the pass
	StateLastPulled    = "last_pulled"    // Documents merged by the pass
)

// LocalStore is the durable on-device task table
type LocalStore interface {
	Put(ctx context.Context, t model.Task) error
	Get(ctx context.Context, id string) (model.Task, error)
	GetAll(ctx context.Context) ([]model.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteWithTombstone(ctx context.Context, id string, at time.Time) error
	Tombstones(ctx context.Context) ([]model.Tombstone, error)
	ClearTombstone(ctx context.Context, id string) error
	SetState(ctx context.Context, key, value string) error
}

// Connectivity reports whether the remote store is believed reachable
type Connectivity interface {
	IsOnline() bool
}

// Options configures an Engine
type Options struct {
	// OnTasksChanged receives the full collection, newest first, after every
	// mutation and reconciliation pass. It runs on the engine's worker and
	// must not block or call back into the engine.
	OnTasksChanged func([]model.Task)

	// Clock and NewID default to time.Now and UUIDv7
	Clock func() time.Time
	NewID func() string

	// ReconcileOnLoad makes LoadTasks run a reconciliation pass when online
	ReconcileOnLoad bool
}

// Result summarizes one reconciliation pass
type Result struct {
	Pushed     int  // Pending tasks written remotely
	PushFailed int  // Pending tasks that stay pending
	Deleted    int  // Outstanding remote deletes completed
	Pulled     int  // Remote documents merged into the local store
	Pruned     int  // Synced local tasks removed because the remote no longer has them
	ListFailed bool // Remote listing failed; the merge was skipped
}

type op struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// Engine applies task mutations locally first and mirrors them to the remote
// store. All work runs on a single worker goroutine, one operation at a time.
type Engine struct {
	local  LocalStore
	remote remote.Store
	conn   Connectivity
	opts   Options

	ops  chan op
	quit chan struct{}
	done chan struct{}

	closeOnce   sync.Once
	asyncQueued atomic.Bool

	// asyncMu orders async.Add against Close
	asyncMu sync.Mutex
	closed  bool
	async   sync.WaitGroup
}

// New creates an engine and starts its worker
func New(local LocalStore, rs remote.Store, conn Connectivity, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newID
	}

	e := &Engine{
		local:  local,
		remote: rs,
		conn:   conn,
		opts:   opts,
		ops:    make(chan op),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go e.worker()
	return e
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e *Engine) worker() {
	defer close(e.done)

	for {
		select {
		case o := <-e.ops:
			o.done <- o.run(context.WithoutCancel(o.ctx))
		case <-e.quit:
			return
		}
	}
}

// submit queues fn and waits for it. Once accepted, fn runs to completion
// even if ctx is cancelled.
func (e *Engine) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	o := op{ctx: ctx, run: fn, done: make(chan error, 1)}

	select {
	case e.ops <- o:
	case <-e.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-o.done
}

// AddTask stores a new pending task and pushes it if online
func (e *Engine) AddTask(ctx context.Context, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, ErrEmptyText
	}

	var task model.Task
	err := e.submit(ctx, func(ctx context.Context) error {
		task = model.NewTask(e.opts.NewID(), text, e.opts.Clock())
		if err := e.local.Put(ctx, task); err != nil {
			return err
		}
		logger.Debug("Task added", logger.F("id", task.ID))

		if e.conn.IsOnline() {
			synced, err := e.push(ctx, task)
			if err != nil {
				return err
			}
			task = synced
		}
		return e.publish(ctx)
	})
	return task, err
}

// ToggleTask flips a task's completed flag. It reports false if the id is unknown.
func (e *Engine) ToggleTask(ctx context.Context, id string) (model.Task, bool, error) {
	var task model.Task
	found := false

	err := e.submit(ctx, func(ctx context.Context) error {
		t, err := e.local.Get(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			logger.Debug("Toggle of unknown task ignored", logger.F("id", id))
			return e.publish(ctx)
		}
		if err != nil {
			return err
		}

		t.Completed = !t.Completed
		t.SyncStatus = model.SyncPending
		if err := e.local.Put(ctx, t); err != nil {
			return err
		}
		task, found = t, true

		if e.conn.IsOnline() {
			synced, err := e.push(ctx, t)
			if err != nil {
				return err
			}
			task = synced
		}
		return e.publish(ctx)
	})
	return task, found, err
}

// DeleteTask removes a task locally and, if online, remotely. The remote
// delete is remembered until it succeeds, also for ids not present locally.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	return e.submit(ctx, func(ctx context.Context) error {
		if err := e.local.DeleteWithTombstone(ctx, id, e.opts.Clock()); err != nil {
			return err
		}

		if e.conn.IsOnline() {
			if _, err := e.deleteRemote(ctx, id); err != nil {
				return err
			}
		}
		return e.publish(ctx)
	})
}

// LoadTasks returns the collection newest first, reconciling first when
// ReconcileOnLoad is set and the monitor reports online.
func (e *Engine) LoadTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := e.submit(ctx, func(ctx context.Context) error {
		reconciled := false
		if e.opts.ReconcileOnLoad && e.conn.IsOnline() {
			if _, err := e.reconcile(ctx); err != nil {
				return err
			}
			reconciled = true
		}

		var err error
		tasks, err = e.snapshot(ctx)
		if err != nil {
			return err
		}
		// reconcile has already published this collection
		if !reconciled {
			e.notify(tasks)
		}
		return nil
	})
	return tasks, err
}

// Reconcile runs one reconciliation pass and waits for it
func (e *Engine) Reconcile(ctx context.Context) (*Result, error) {
	var result *Result
	err := e.submit(ctx, func(ctx context.Context) error {
		var err error
		result, err = e.reconcile(ctx)
		return err
	})
	return result, err
}

// ReconcileAsync queues a reconciliation pass without waiting. While one
// queued pass has not started yet, further calls are dropped.
func (e *Engine) ReconcileAsync() {
	e.asyncMu.Lock()
	defer e.asyncMu.Unlock()
	if e.closed {
		return
	}
	if !e.asyncQueued.CompareAndSwap(false, true) {
		return
	}

	e.async.Add(1)
	go func() {
		defer e.async.Done()

		err := e.submit(context.Background(), func(ctx context.Context) error {
			e.asyncQueued.Store(false)
			result, err := e.reconcile(ctx)
			if err == nil {
				logger.Info("Background reconcile finished",
					logger.F("pushed", result.Pushed),
					logger.F("pulled", result.Pulled),
					logger.F("deleted", result.Deleted),
					logger.F("pruned", result.Pruned))
			}
			return err
		})
		if errors.Is(err, ErrClosed) {
			e.asyncQueued.Store(false)
			return
		}
		if err != nil {
			logger.Error("Background reconcile failed", logger.F("error", err))
		}
	}()
}

// Close stops the worker after the current operation finishes
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.asyncMu.Lock()
		e.closed = true
		e.asyncMu.Unlock()

		close(e.quit)
		<-e.done
		e.async.Wait()
	})
}

// push writes a task remotely and marks it synced. Remote failures leave the
// task pending and are not returned; local failures are.
func (e *Engine) push(ctx context.Context, t model.Task) (model.Task, error) {
	if err := e.remote.Upsert(ctx, t.Document()); err != nil {
		logger.Warn("Remote write failed, task stays pending",
			logger.F("id", t.ID), logger.F("error", err))
		return t, nil
	}

	t.SyncStatus = model.SyncSynced
	if err := e.local.Put(ctx, t); err != nil {
		return t, err
	}
	return t, nil
}

// deleteRemote removes a document remotely and clears its tombstone
func (e *Engine) deleteRemote(ctx context.Context, id string) (bool, error) {
	if err := e.remote.Delete(ctx, id); err != nil && !errors.Is(err, remote.ErrNotFound) {
		logger.Warn("Remote delete failed, will retry on next reconcile",
			logger.F("id", id), logger.F("error", err))
		return false, nil
	}
	if err := e.local.ClearTombstone(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) reconcile(ctx context.Context) (*Result, error) {
	result := &Result{}

	tasks, err := e.local.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range tasks {
		if !t.IsPending() {
			continue
		}
		synced, err := e.push(ctx, t)
		if err != nil {
			return nil, err
		}
		if synced.IsPending() {
			result.PushFailed++
		} else {
			result.Pushed++
		}
	}

	tombstones, err := e.local.Tombstones(ctx)
	if err != nil {
		return nil, err
	}
	deleting := make(map[string]bool)
	for _, ts := range tombstones {
		ok, err := e.deleteRemote(ctx, ts.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Deleted++
		} else {
			deleting[ts.ID] = true
		}
	}

	docs, err := e.remote.List(ctx)
	if err != nil {
		logger.Warn("Remote list failed, skipping merge", logger.F("error", err))
		result.ListFailed = true
	} else if err := e.merge(ctx, docs, deleting, result); err != nil {
		return nil, err
	}

	if err := e.local.SetState(ctx, StateLastReconcile, e.opts.Clock().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := e.local.SetState(ctx, StateLastPulled, strconv.Itoa(result.Pulled)); err != nil {
		return nil, err
	}

	logger.Debug("Reconcile pass done",
		logger.F("pushed", result.Pushed),
		logger.F("push_failed", result.PushFailed),
		logger.F("deleted", result.Deleted),
		logger.F("pulled", result.Pulled),
		logger.F("pruned", result.Pruned),
		logger.F("list_failed", result.ListFailed))

	return result, e.publish(ctx)
}

// merge writes every remote document locally as synced. A remote document
// replaces the local row with the same id. Synced local rows the remote no
// longer lists are removed; pending rows never are.
func (e *Engine) merge(ctx context.Context, docs []model.Document, deleting map[string]bool, result *Result) error {
	listed := make(map[string]bool, len(docs))
	for _, doc := range docs {
		listed[doc.ID] = true
		if deleting[doc.ID] {
			continue
		}
		if err := e.local.Put(ctx, doc.ToTask()); err != nil {
			return err
		}
		result.Pulled++
	}

	current, err := e.local.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, t := range current {
		if listed[t.ID] || t.IsPending() {
			continue
		}
		if err := e.local.Delete(ctx, t.ID); err != nil {
			return err
		}
		result.Pruned++
	}
	return nil
}

func (e *Engine) snapshot(ctx context.Context) ([]model.Task, error) {
	tasks, err := e.local.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	model.SortTasks(tasks)
	return tasks, nil
}

func (e *Engine) publish(ctx context.Context) error {
	tasks, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	e.notify(tasks)
	return nil
}

func (e *Engine) notify(tasks []model.Task) {
	if e.opts.OnTasksChanged != nil {
		e.opts.OnTasksChanged(tasks)
	}
}
