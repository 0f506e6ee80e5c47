package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/tasksync/internal/config"
	"github.com/existflow/tasksync/internal/logger"
	"github.com/existflow/tasksync/internal/sync"
	"github.com/existflow/tasksync/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	offline    bool

	// cfg is loaded once per invocation by the root command
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tasksync",
	Short: "tasksync - offline-first todo list",
	Long: `tasksync keeps a todo list in a local database and mirrors it to a
remote store whenever one is reachable. Changes made offline are pushed
on the next reconnect.

Run 'tasksync' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		// --offline applies to this run only
		if cmd.Flags().Changed("offline") {
			cfg.Offline = offline
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("tasksync started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: runTUI,

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("tasksync exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	feed := tui.NewFeed()
	a, err := openApp(ctx, cfg, feed.Publish)
	if err != nil {
		logger.Error("Failed to open app", logger.F("error", err))
		return err
	}
	defer a.Close()
	defer cancel() // stop the prober before closing the monitor

	// Background connectivity probing and automatic reconciliation
	if a.prober != nil {
		go a.prober.Run(ctx)
		auto := sync.NewAutoSync(a.engine, a.monitor, cfg.ReconcileInterval)
		defer auto.Stop()
	}

	logger.Info("Launching TUI")
	m := tui.NewModel(a.engine, a.monitor, feed, tui.Options{ConfirmDelete: cfg.ConfirmDelete})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	logger.Info("TUI exited normally")
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Do not contact the remote store")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(clearCmd)
}
