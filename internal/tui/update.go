package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/tasksync/internal/logger"
	"github.com/existflow/tasksync/internal/model"
	"github.com/existflow/tasksync/internal/sync"
)

// tickMsg is sent every second to refresh the connectivity indicator
type tickMsg time.Time

// tasksMsg carries a collection published by the engine
type tasksMsg []model.Task

// loadedMsg carries the result of the initial load. It never starts a feed
// reader; waitForTasks is the only one.
type loadedMsg struct {
	tasks []model.Task
	err   error
}

// opDoneMsg reports the outcome of an engine call
type opDoneMsg struct {
	message string
	err     error
}

// reconcileDoneMsg reports a manual reconciliation pass
type reconcileDoneMsg struct {
	result *sync.Result
	err    error
}

// Init loads the collection and starts listening for updates
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.loadTasks(), m.waitForTasks())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForTasks listens for collections published by the engine
func (m Model) waitForTasks() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return func() tea.Msg {
		return tasksMsg(<-m.feed.ch)
	}
}

func (m Model) loadTasks() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		tasks, err := engine.LoadTasks(context.Background())
		return loadedMsg{tasks: tasks, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.online = m.conn.IsOnline()
		return m, tickCmd()

	case tasksMsg:
		m.fed = true
		m.setTasks(msg)
		return m, m.waitForTasks()

	case loadedMsg:
		if msg.err != nil {
			logger.Error("Failed to load tasks", logger.F("error", msg.err))
			m.err = msg.err
			return m, nil
		}
		// The feed is newer than this result once it has delivered anything
		if !m.fed {
			m.setTasks(msg.tasks)
		}
		return m, nil

	case opDoneMsg:
		m.err = msg.err
		if msg.err != nil {
			logger.Error("Task operation failed", logger.F("error", msg.err))
			m.message = ""
		} else {
			m.message = msg.message
		}
		return m, nil

	case reconcileDoneMsg:
		m.syncing = false
		m.online = m.conn.IsOnline()
		m.err = msg.err
		if msg.err == nil {
			m.message = formatResult(msg.result)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Top):
		m.cursor = 0

	case key.Matches(msg, keys.Bottom):
		if len(m.tasks) > 0 {
			m.cursor = len(m.tasks) - 1
		}

	case key.Matches(msg, keys.Add):
		m.mode = ModeAddTask
		m.input.Reset()
		m.input.Focus()
		m.message = ""
		m.err = nil

	case key.Matches(msg, keys.Done):
		if t := m.currentTask(); t != nil {
			return m, m.toggleTask(t.ID)
		}

	case key.Matches(msg, keys.Delete):
		if t := m.currentTask(); t != nil {
			if m.opts.ConfirmDelete {
				m.mode = ModeConfirmDelete
				return m, nil
			}
			return m, m.deleteTask(t.ID)
		}

	case key.Matches(msg, keys.Refresh):
		if !m.syncing {
			m.syncing = true
			m.message = "Syncing..."
			return m, m.reconcile()
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

// updateInput handles the add-task input box
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		text := strings.TrimSpace(m.input.Value())
		m.mode = ModeNormal
		m.input.Blur()
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		m.cursor = 0
		return m, m.addTask(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	if key.Matches(msg, keys.Yes) {
		if t := m.currentTask(); t != nil {
			return m, m.deleteTask(t.ID)
		}
	}
	return m, nil
}

func (m Model) addTask(text string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		task, err := engine.AddTask(context.Background(), text)
		if errors.Is(err, sync.ErrEmptyText) {
			return opDoneMsg{}
		}
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{message: "Added: " + truncate(task.Text, 40)}
	}
}

func (m Model) toggleTask(id string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		task, found, err := engine.ToggleTask(context.Background(), id)
		if err != nil {
			return opDoneMsg{err: err}
		}
		if !found {
			return opDoneMsg{message: "Task no longer exists"}
		}
		if task.Completed {
			return opDoneMsg{message: "Completed: " + truncate(task.Text, 40)}
		}
		return opDoneMsg{message: "Reopened: " + truncate(task.Text, 40)}
	}
}

func (m Model) deleteTask(id string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		if err := engine.DeleteTask(context.Background(), id); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{message: "Deleted"}
	}
}

func (m Model) reconcile() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		result, err := engine.Reconcile(context.Background())
		return reconcileDoneMsg{result: result, err: err}
	}
}

func formatResult(r *sync.Result) string {
	if r == nil {
		return ""
	}
	if r.ListFailed {
		return fmt.Sprintf("Sync incomplete: pushed %d, %d still pending, remote unreachable", r.Pushed, r.PushFailed)
	}
	return fmt.Sprintf("Synced: pushed %d, pulled %d, deleted %d", r.Pushed, r.Pulled, r.Deleted+r.Pruned)
}
