package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/tasksync/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, newest first.

Examples:
  tasksync list
  tasksync list --sync
  tasksync list --pending`,
	RunE: runList,
}

var (
	listSync    bool
	listPending bool
)

func init() {
	listCmd.Flags().BoolVarP(&listSync, "sync", "s", false, "Reconcile with the remote store before listing")
	listCmd.Flags().BoolVar(&listPending, "pending", false, "Only show tasks not yet synced")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if listSync && a.monitor.IsOnline() {
		if _, err := a.engine.Reconcile(ctx); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
	}

	tasks, err := a.engine.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if listPending {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.IsPending() {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found. Add one with: tasksync add \"Your task\"")
		return nil
	}

	printTasks(tasks, a.monitor.IsOnline())
	return nil
}

func printTasks(tasks []model.Task, online bool) {
	open, pending := 0, 0
	for _, t := range tasks {
		if !t.Completed {
			open++
		}
		if t.IsPending() {
			pending++
		}
	}

	state := "offline"
	if online {
		state = "online"
	}
	fmt.Printf("\n%d open, %d pending sync (%s)\n", open, pending, state)
	fmt.Println(strings.Repeat("─", 60))

	for _, t := range tasks {
		printTask(t)
	}
	fmt.Println()
}

func printTask(t model.Task) {
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	sync := " "
	if t.IsPending() {
		sync = "*"
	}

	// Truncate text if too long
	text := t.Text
	if r := []rune(text); len(r) > 40 {
		text = string(r[:37]) + "..."
	}

	fmt.Printf("  %s  %-8s  %-40s  %s  %s\n", icon, shortID(t.ID), text, t.Created().Format("Jan 2 15:04"), sync)
}
