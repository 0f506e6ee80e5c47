package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a new task",
	Long: `Add a new task. The task is saved locally first and pushed to the
remote store right away when online, otherwise on the next sync.

Examples:
  tasksync add "Buy groceries"
  tasksync add Call the plumber`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.engine.AddTask(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Printf("✓ Added: \"%s\" (%s)%s\n", task.Text, shortID(task.ID), pendingNote(task.IsPending()))
	return nil
}

func pendingNote(pending bool) string {
	if pending {
		return " - pending sync"
	}
	return ""
}
