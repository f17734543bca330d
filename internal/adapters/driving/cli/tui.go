package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/routy-labs/routy/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for Routy.

The TUI recommends routes, precalculates the route set, shows segment
usage and edits settings with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select / Accept
  n        - Next route
  c, Esc   - Cancel / Back
  ctrl+c   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runApp starts the bubbletea program. Tests replace it.
var runApp = func(app *tui.App) error {
	return app.Run()
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if liveRecommender == nil {
		return errors.New("route recommender not configured")
	}

	stop := startScheduler(cmd.Context())
	defer stop()

	app, err := tui.NewApp(&tui.Ports{
		Recommender: liveRecommender,
		Precalc:     precalculator,
		Graph:       graphService,
		Usage:       usageService,
		Settings:    settingsService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
