package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/tasksync/internal/logger"
	"github.com/existflow/tasksync/internal/model"
	"github.com/existflow/tasksync/internal/sync"
)

// Engine is the sync engine as seen by the view layer
type Engine interface {
	AddTask(ctx context.Context, text string) (model.Task, error)
	ToggleTask(ctx context.Context, id string) (model.Task, bool, error)
	DeleteTask(ctx context.Context, id string) error
	LoadTasks(ctx context.Context) ([]model.Task, error)
	Reconcile(ctx context.Context) (*sync.Result, error)
}

// Connectivity reports the current online belief
type Connectivity interface {
	IsOnline() bool
}

// Feed carries task collections published by the engine to the UI.
// Only the latest collection is kept; older unread ones are dropped.
type Feed struct {
	ch chan []model.Task
}

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{ch: make(chan []model.Task, 1)}
}

// Publish never blocks. It is meant to be the engine's OnTasksChanged.
func (f *Feed) Publish(tasks []model.Task) {
	for {
		select {
		case f.ch <- tasks:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeConfirmDelete
	ModeHelp
)

// Options configures the TUI
type Options struct {
	ConfirmDelete bool
}

// Model is the main TUI model
type Model struct {
	engine Engine
	conn   Connectivity
	feed   *Feed
	opts   Options

	tasks []model.Task
	fed   bool // a collection arrived through the feed

	// UI state
	width   int
	height  int
	mode    Mode
	cursor  int
	online  bool
	syncing bool

	// Input
	input textinput.Model

	message string
	err     error
}

// NewModel creates a new TUI model. feed must be wired to the engine's
// OnTasksChanged so background reconciliation shows up on screen.
func NewModel(engine Engine, conn Connectivity, feed *Feed, opts Options) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		engine: engine,
		conn:   conn,
		feed:   feed,
		opts:   opts,
		mode:   ModeNormal,
		input:  ti,
		online: conn.IsOnline(),
	}
}

// Tasks returns the tasks currently shown
func (m Model) Tasks() []model.Task {
	return m.tasks
}

func (m *Model) setTasks(tasks []model.Task) {
	m.tasks = tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentTask() *model.Task {
	if m.cursor < len(m.tasks) {
		return &m.tasks[m.cursor]
	}
	return nil
}

func (m Model) pendingCount() int {
	n := 0
	for _, t := range m.tasks {
		if t.IsPending() {
			n++
		}
	}
	return n
}
