package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var precalcCmd = &cobra.Command{
	Use:   "precalc",
	Short: "Precalculate closed routes from the home node",
	Long: `Reads the segment network, enumerates every closed route from the home
node whose length lies between routes.precalc_min_km and routes.precalc_max_km,
and replaces the stored route set. Recommendations keep working from the old
set until the new one is stored.`,
	Args: cobra.NoArgs,
	RunE: runPrecalc,
}

func init() {
	rootCmd.AddCommand(precalcCmd)
}

func runPrecalc(cmd *cobra.Command, _ []string) error {
	if precalculator == nil {
		return errors.New("precalculation not configured")
	}

	cmd.Println("Precalculating routes...")
	result, err := precalculator.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("precalculation failed: %w", friendlyError(err))
	}

	cmd.Printf("Home node: %d\n", result.HomeNodeID)
	cmd.Printf("Graph: %d nodes, %d segments", result.Nodes, result.Segments)
	if result.SkippedSegments > 0 {
		cmd.Printf(" (%d skipped)", result.SkippedSegments)
	}
	cmd.Println()
	cmd.Printf("Stored %d routes in %s\n", result.Routes, result.Duration.Round(1e6))
	return nil
}
