package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driving"
	"github.com/routy-labs/routy/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Services holds the core services the commands drive.
type Services struct {
	Settings driving.SettingsService
	Precalc  driving.Precalculator

	// Recommender keeps sessions in the database so that successive
	// invocations of the route commands share a session.
	Recommender driving.RouteRecommender

	// LiveRecommender keeps sessions in memory for long-running front ends.
	LiveRecommender driving.RouteRecommender

	Graph     driving.GraphService
	Usage     driving.UsageService
	Scheduler driving.Scheduler

	// NewPrecalc builds a precalculator for freshly loaded settings.
	NewPrecalc func(domain.RoutingSettings) driving.Precalculator

	// ConfigPath is the configuration file watched by the daemon.
	ConfigPath string
}

// Service instances set by SetServices.
var (
	settingsService driving.SettingsService
	precalculator   driving.Precalculator
	recommender     driving.RouteRecommender
	liveRecommender driving.RouteRecommender
	graphService    driving.GraphService
	usageService    driving.UsageService
	scheduler       driving.Scheduler
	newPrecalc      func(domain.RoutingSettings) driving.Precalculator
	configPath      string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "routy",
	Short: "Recommend varied closed walking routes from home",
	Long: `Routy precalculates closed routes through a segment network that start
and end at your home node, then recommends one that matches a requested
distance or duration. Each alternative avoids the segments you have already
seen, and accepted routes count against their segments so that future
recommendations favour paths you walk less often.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the services used by all commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	precalculator = s.Precalc
	recommender = s.Recommender
	liveRecommender = s.LiveRecommender
	graphService = s.Graph
	usageService = s.Usage
	scheduler = s.Scheduler
	newPrecalc = s.NewPrecalc
	configPath = s.ConfigPath
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// friendlyError turns domain errors into messages a user can act on.
// Errors it does not recognise are returned unchanged.
func friendlyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidTarget):
		return fmt.Errorf("%w (try e.g. 5km or 45min)", err)
	case errors.Is(err, domain.ErrNoCandidate):
		return fmt.Errorf("%w: try another target or run 'routy precalc'", err)
	case errors.Is(err, domain.ErrNoDiverseAlternative):
		return fmt.Errorf("%w: every route in range has been shown", err)
	case errors.Is(err, domain.ErrSessionExpired):
		return fmt.Errorf("%w: start a new one with 'routy route start <target>'", err)
	case errors.Is(err, domain.ErrHomeNodeNotFound):
		return fmt.Errorf("%w: check 'home.name' with 'routy settings'", err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fmt.Errorf("%w: check the storage settings", err)
	default:
		return err
	}
}
