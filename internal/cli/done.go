package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task's completed state",
	Long: `Mark a task as completed, or reopen it if it already is.
The id may be shortened to any unique prefix or the 8 characters shown by list.

Examples:
  tasksync done 3f9c2a1b`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.resolveTask(ctx, args[0])
	if err != nil {
		return err
	}

	task, found, err := a.engine.ToggleTask(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if !found {
		return fmt.Errorf("task not found: %s", args[0])
	}

	if task.Completed {
		fmt.Printf("✓ Completed: \"%s\"%s\n", task.Text, pendingNote(task.IsPending()))
	} else {
		fmt.Printf("○ Reopened: \"%s\"%s\n", task.Text, pendingNote(task.IsPending()))
	}
	return nil
}
