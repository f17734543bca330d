package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var usageLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "List the most used segments",
	Long: `Lists segments ordered by how many accepted routes used them, with the
number of acceptances today.`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().IntVarP(&usageLimit, "limit", "n", 20, "maximum number of segments (0 = all)")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, _ []string) error {
	if usageService == nil {
		return errors.New("usage service not configured")
	}

	top, err := usageService.Top(cmd.Context(), usageLimit)
	if err != nil {
		return friendlyError(err)
	}

	if len(top) == 0 {
		cmd.Println("No segment usage recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEGMENT\tUSED\tTODAY")
	for _, u := range top {
		fmt.Fprintf(w, "%d\t%d\t%d\n", u.SegmentID, u.UsageCount, u.AcceptedToday)
	}
	return w.Flush()
}
