package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/routy-labs/routy/internal/adapters/driven/config/file"
	"github.com/routy-labs/routy/internal/logger"
)

var daemonWatchConfig bool

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run background tasks until interrupted",
	Long: `Runs the scheduler in the foreground: idle recommendation sessions are
swept and, when scheduler.precalc_enabled is set, routes are precalculated
periodically.

With --watch-config, editing the configuration file re-runs precalculation
with the new settings.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().BoolVar(&daemonWatchConfig, "watch-config", false,
		"re-run precalculation when the configuration file changes")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if daemonWatchConfig {
		if configPath == "" {
			return errors.New("no configuration file to watch")
		}
		go func() {
			err := file.Watch(ctx, configPath, file.DefaultDebounce, func() { reloadAndPrecalc(ctx) })
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("config watcher stopped: %v", err)
			}
		}()
	}

	cmd.Println("Routy daemon running. Press Ctrl+C to stop.")
	err := scheduler.Start(ctx)
	if stopErr := scheduler.Stop(); stopErr != nil {
		logger.Warn("scheduler stop: %v", stopErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Stopped.")
	return nil
}

// reloadAndPrecalc re-reads the configuration and precalculates routes with it.
// Invalid settings are logged and leave the stored routes untouched.
func reloadAndPrecalc(ctx context.Context) {
	if settingsService == nil || newPrecalc == nil {
		return
	}
	if err := settingsService.Reload(); err != nil {
		logger.Error("%v", err)
		return
	}
	routing, err := settingsService.Routing()
	if err != nil {
		logger.Error("configuration rejected: %v", err)
		return
	}

	result, err := newPrecalc(routing).Run(ctx)
	if err != nil {
		logger.Error("precalculation after config change: %v", err)
		return
	}
	logger.Info("configuration changed: stored %d routes from home node %d", result.Routes, result.HomeNodeID)
}

// startScheduler runs the scheduler in the background for long-running
// commands and returns a function that stops it.
func startScheduler(ctx context.Context) func() {
	if scheduler == nil || settingsService == nil || !settingsService.Scheduler().Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop: %v", err)
		}
		<-done
	}
}
