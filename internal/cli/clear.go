package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all tasks",
	Long: `Clear all tasks from the local database or/and the remote store.
By default, it only clears the local database. --remote clears only the
remote collection, --all (or --remote --local) clears both.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().Bool("local", true, "Clear local data (default)")
	clearCmd.Flags().Bool("remote", false, "Clear the remote collection")
	clearCmd.Flags().Bool("all", false, "Clear both local and remote data")
	clearCmd.Flags().Bool("force", false, "Do not ask for confirmation")
}

// clearer is implemented by every remote backend
type clearer interface {
	Clear(ctx context.Context) error
}

// clearTargets resolves the flags. --local only defaults to true when
// --remote is not given.
func clearTargets(local, localSet, remote, all bool) (bool, bool) {
	if all {
		return true, true
	}
	if remote && !localSet {
		local = false
	}
	return local, remote
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	local, _ := cmd.Flags().GetBool("local")
	remote, _ := cmd.Flags().GetBool("remote")
	all, _ := cmd.Flags().GetBool("all")
	force, _ := cmd.Flags().GetBool("force")

	local, remote = clearTargets(local, cmd.Flags().Changed("local"), remote, all)
	if !local && !remote {
		fmt.Println("Nothing to clear.")
		return nil
	}

	if !force {
		fmt.Printf("Are you sure you want to clear data? (y/N): ")
		var response string
		_, _ = fmt.Scanln(&response)
		if strings.ToLower(response) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if local {
		fmt.Println("🧹 Clearing local data...")
		if err := a.db.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear local data: %w", err)
		}
		fmt.Println("Local data cleared.")
	}

	if remote {
		c, ok := a.remote.(clearer)
		switch {
		case a.prober == nil:
			fmt.Println("Skipping remote clear: offline or not logged in.")
		case !ok:
			fmt.Println("Skipping remote clear: backend does not support it.")
		default:
			fmt.Println("🌐 Clearing remote data...")
			if err := c.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear remote data: %w", err)
			}
			fmt.Println("Remote data cleared.")
		}
	}

	return nil
}
