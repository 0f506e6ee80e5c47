package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	mainContent := m.renderTaskList()

	if m.mode == ModeAddTask || m.mode == ModeConfirmDelete {
		mainContent = lipgloss.Place(
			m.width, m.height-4,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, statusBar)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("tasksync")
	status := FormatConnectivity(m.online)
	if n := m.pendingCount(); n > 0 {
		status += HelpStyle.Render(fmt.Sprintf("  %d pending", n))
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status) - 1
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + status
}

func (m Model) renderTaskList() string {
	if len(m.tasks) == 0 {
		return TaskListStyle.Render(HelpStyle.Render("No tasks yet. Press 'a' to add one."))
	}

	maxText := m.width - 12
	if maxText < 10 {
		maxText = 10
	}

	var b strings.Builder
	for i, t := range m.tasks {
		cursor := "  "
		style := TaskItemStyle
		if i == m.cursor {
			cursor = "❯ "
			style = TaskItemSelectedStyle
		}

		check := "[ ]"
		if t.Completed {
			check = "[x]"
			if i != m.cursor {
				style = TaskDoneStyle
			}
		}

		line := fmt.Sprintf("%s %s", check, truncate(t.Text, maxText))
		b.WriteString(cursor + style.Render(line) + " " + FormatSyncStatus(t.IsPending()) + "\n")
	}

	return TaskListStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderStatusBar() string {
	var line string
	switch {
	case m.err != nil:
		line = ErrorStyle.Render("Error: " + m.err.Error())
	case m.message != "":
		line = m.message
	default:
		line = "a:add  x:done  d:del  r:sync  ?:help  q:quit"
	}
	return StatusBarStyle.Width(m.width).Render(line)
}

func (m Model) renderModal() string {
	if m.mode == ModeConfirmDelete {
		text := ""
		if t := m.currentTask(); t != nil {
			text = truncate(t.Text, 40)
		}
		return ModalStyle.Render(fmt.Sprintf("Delete %q?\n\n%s", text, HelpStyle.Render("y: delete  any other key: cancel")))
	}

	return ModalStyle.Render("New task\n\n" + m.input.View() + "\n\n" + HelpStyle.Render("enter: save  esc: cancel"))
}

func (m Model) renderHelp() string {
	bindings := []struct{ key, desc string }{
		{keys.Up.Help().Key, keys.Up.Help().Desc},
		{keys.Down.Help().Key, keys.Down.Help().Desc},
		{keys.Top.Help().Key, keys.Top.Help().Desc},
		{keys.Bottom.Help().Key, keys.Bottom.Help().Desc},
		{keys.Add.Help().Key, keys.Add.Help().Desc},
		{keys.Done.Help().Key, keys.Done.Help().Desc},
		{keys.Delete.Help().Key, keys.Delete.Help().Desc},
		{keys.Refresh.Help().Key, keys.Refresh.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Keys") + "\n\n")
	for _, kb := range bindings {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", kb.key, kb.desc))
	}
	b.WriteString("\n" + HelpStyle.Render("● pending  ✓ synced") + "\n")
	b.WriteString(HelpStyle.Render("Press any key to close"))
	return TaskListStyle.Render(b.String())
}
