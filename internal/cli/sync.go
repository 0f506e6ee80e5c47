package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/tasksync/internal/config"
	"github.com/existflow/tasksync/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile tasks with the remote store",
	Long: `Push pending changes, retry outstanding deletes and pull the remote collection.

Commands:
  tasksync sync              # Sync now
  tasksync sync status       # Show sync status
  tasksync sync config       # Show or change the remote store`,
	RunE: runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE:  runSyncStatus,
}

var syncConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure the remote store",
	RunE:  runSyncConfig,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncConfigCmd)

	syncConfigCmd.Flags().String("server", "", "Set server URL")
	syncConfigCmd.Flags().String("backend", "", "Set backend (http or mongo)")
	syncConfigCmd.Flags().String("mongo-uri", "", "Set MongoDB connection string")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.prober == nil {
		if a.http != nil && !a.http.IsLoggedIn() {
			return fmt.Errorf("not logged in, run: tasksync auth login")
		}
		return fmt.Errorf("offline mode is on, nothing to sync")
	}
	if !a.monitor.IsOnline() {
		fmt.Println("⚠️  Remote store unreachable, changes stay pending.")
		return nil
	}

	fmt.Println("🔄 Synchronizing...")
	result, err := a.engine.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printResult(result)
	return nil
}

func printResult(r *sync.Result) {
	if r.ListFailed {
		fmt.Printf("⚠️  Sync incomplete: pushed %d, %d still pending, could not pull remote tasks\n", r.Pushed, r.PushFailed)
		return
	}
	fmt.Printf("✓ Sync complete! Pushed: %d, Pulled: %d, Deleted: %d\n", r.Pushed, r.Pulled, r.Deleted+r.Pruned)
	if r.PushFailed > 0 {
		fmt.Printf("  %d task(s) still pending\n", r.PushFailed)
	}
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.db.GetAll(ctx)
	if err != nil {
		return err
	}
	pending := 0
	for _, t := range tasks {
		if t.IsPending() {
			pending++
		}
	}
	tombstones, err := a.db.Tombstones(ctx)
	if err != nil {
		return err
	}
	last, err := a.db.State(ctx, sync.StateLastReconcile)
	if err != nil {
		return err
	}
	if last == "" {
		last = "never"
	}

	fmt.Printf("Backend:   %s\n", cfg.Remote.Backend)
	if a.http != nil {
		fmt.Printf("Server:    %s\n", a.http.ServerURL())
		if a.http.IsLoggedIn() {
			fmt.Printf("User ID:   %s\n", a.http.UserID())
		} else {
			fmt.Println("User ID:   not logged in")
		}
	} else {
		fmt.Printf("Database:  %s/%s\n", cfg.Remote.MongoDatabase, cfg.Remote.MongoCollection)
	}
	fmt.Printf("Status:    %s\n", a.monitor.State())
	fmt.Printf("Pending:   %d task(s), %d delete(s)\n", pending, len(tombstones))
	fmt.Printf("Last Sync: %s\n", last)
	return nil
}

func runSyncConfig(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	backend, _ := cmd.Flags().GetString("backend")
	mongoURI, _ := cmd.Flags().GetString("mongo-uri")

	if server == "" && backend == "" && mongoURI == "" {
		fmt.Printf("Backend: %s\n", cfg.Remote.Backend)
		fmt.Printf("Server:  %s\n", cfg.Remote.ServerURL)
		if cfg.Remote.Backend == config.BackendMongo {
			fmt.Printf("MongoDB: %s (%s/%s)\n", cfg.Remote.MongoURI, cfg.Remote.MongoDatabase, cfg.Remote.MongoCollection)
		}
		return nil
	}

	if server != "" {
		cfg.Remote.ServerURL = server
	}
	if backend != "" {
		cfg.Remote.Backend = backend
	}
	if mongoURI != "" {
		cfg.Remote.MongoURI = mongoURI
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Sync settings saved")
	return nil
}
