package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Status colors
	Completed   = lipgloss.Color("#95E1A3") // Green
	SyncOK      = lipgloss.Color("#95E1A3") // Green
	SyncPending = lipgloss.Color("#FFE66D") // Yellow
	SyncError   = lipgloss.Color("#FF6B6B") // Red
	Offline     = lipgloss.Color("#6C757D") // Gray

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Task list
	TaskListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Task item
	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	// Sync badges
	PendingBadgeStyle = lipgloss.NewStyle().Foreground(SyncPending)
	SyncedBadgeStyle  = lipgloss.NewStyle().Foreground(SyncOK)

	// Connectivity indicator
	OnlineStyle  = lipgloss.NewStyle().Foreground(SyncOK).Bold(true)
	OfflineStyle = lipgloss.NewStyle().Foreground(Offline).Bold(true)

	ErrorStyle = lipgloss.NewStyle().Foreground(SyncError)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// FormatSyncStatus returns a one-character badge for a task's sync state
func FormatSyncStatus(pending bool) string {
	if pending {
		return PendingBadgeStyle.Render("●")
	}
	return SyncedBadgeStyle.Render("✓")
}

// FormatConnectivity renders the online/offline indicator
func FormatConnectivity(online bool) string {
	if online {
		return OnlineStyle.Render("● online")
	}
	return OfflineStyle.Render("○ offline")
}
