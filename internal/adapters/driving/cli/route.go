package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

var routeJSON bool

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var routeCmd = &cobra.Command{
	Use:   "route [target]",
	Short: "Recommend a route",
	Long: `Recommends a precalculated route close to a target distance or duration.

With a target and an interactive terminal, routy keeps the session open and
reads single-letter commands:
  n - next alternative
  a - accept the route
  c - cancel

Scripts use the subcommands instead; the session token printed by
'route start' is passed to next, accept and cancel.

Examples:
  routy route 5km
  routy route start 45min --json
  routy route next 3f2a...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoute,
}

var routeStartCmd = &cobra.Command{
	Use:   "start <target>",
	Short: "Start a session and print the first proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runRouteStart,
}

var routeNextCmd = &cobra.Command{
	Use:     "next <token>",
	Aliases: []string{"alt"},
	Short:   "Propose an alternative with a wider tolerance",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRouteAction(cmd, args[0], driving.RouteRecommender.Alternative)
	},
}

var routeAcceptCmd = &cobra.Command{
	Use:   "accept <token>",
	Short: "Accept the current proposal and record its segments as used",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRouteAction(cmd, args[0], driving.RouteRecommender.Accept)
	},
}

var routeCancelCmd = &cobra.Command{
	Use:   "cancel <token>",
	Short: "End the session without recording usage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRouteAction(cmd, args[0], driving.RouteRecommender.Cancel)
	},
}

func init() {
	routeCmd.PersistentFlags().BoolVar(&routeJSON, "json", false, "output proposals as JSON")
	routeCmd.AddCommand(routeStartCmd)
	routeCmd.AddCommand(routeNextCmd)
	routeCmd.AddCommand(routeAcceptCmd)
	routeCmd.AddCommand(routeCancelCmd)
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	if routeJSON || !isTerminal() {
		return runRouteStart(cmd, args)
	}
	return runRouteInteractive(cmd, cmd.InOrStdin(), args[0])
}

func runRouteStart(cmd *cobra.Command, args []string) error {
	if recommender == nil {
		return errors.New("route recommender not configured")
	}

	target, err := domain.ParseTarget(args[0])
	if err != nil {
		return friendlyError(err)
	}

	proposal, err := recommender.Start(cmd.Context(), target)
	if err != nil {
		return friendlyError(err)
	}
	return printProposal(cmd, proposal)
}

func runRouteAction(
	cmd *cobra.Command,
	token string,
	action func(driving.RouteRecommender, context.Context, string) (*domain.RouteProposal, error),
) error {
	if recommender == nil {
		return errors.New("route recommender not configured")
	}

	proposal, err := action(recommender, cmd.Context(), token)
	if err != nil {
		return friendlyError(err)
	}
	return printProposal(cmd, proposal)
}

// runRouteInteractive drives one session from line-based input.
func runRouteInteractive(cmd *cobra.Command, in io.Reader, input string) error {
	if recommender == nil {
		return errors.New("route recommender not configured")
	}

	target, err := domain.ParseTarget(input)
	if err != nil {
		return friendlyError(err)
	}

	ctx := cmd.Context()
	proposal, err := recommender.Start(ctx, target)
	if err != nil {
		return friendlyError(err)
	}
	if err := printProposal(cmd, proposal); err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	for {
		cmd.Print("[n]ext, [a]ccept, [c]ancel: ")
		line, readErr := reader.ReadString('\n')
		choice := strings.ToLower(strings.TrimSpace(line))

		switch choice {
		case "n", "next":
			next, err := recommender.Alternative(ctx, proposal.Token)
			switch {
			case errors.Is(err, domain.ErrNoCandidate), errors.Is(err, domain.ErrNoDiverseAlternative):
				cmd.Println(friendlyError(err))
			case err != nil:
				return friendlyError(err)
			default:
				proposal = next
				if err := printProposal(cmd, proposal); err != nil {
					return err
				}
			}
		case "a", "accept":
			accepted, err := recommender.Accept(ctx, proposal.Token)
			if err != nil {
				return friendlyError(err)
			}
			cmd.Printf("Accepted %s (%s, %s). Enjoy the walk!\n",
				accepted.Signature, accepted.LengthLabel(), accepted.DurationLabel())
			return nil
		case "c", "cancel", "q":
			if _, err := recommender.Cancel(ctx, proposal.Token); err != nil && !errors.Is(err, domain.ErrSessionExpired) {
				return friendlyError(err)
			}
			cmd.Println("Cancelled.")
			return nil
		case "":
		default:
			cmd.Printf("Unknown choice %q\n", choice)
		}

		if readErr != nil {
			// Input closed without a decision; leave the session to expire.
			cmd.Println()
			return nil
		}
	}
}

// proposalOutput is the JSON shape of a proposal.
type proposalOutput struct {
	Token            string   `json:"token"`
	Status           string   `json:"status"`
	Signature        string   `json:"signature"`
	Nodes            []string `json:"nodes"`
	NodeIDs          []int64  `json:"node_ids"`
	SegmentIDs       []int64  `json:"segment_ids"`
	LengthM          int      `json:"length_m"`
	LengthKm         float64  `json:"length_km"`
	DurationMin      int      `json:"duration_min"`
	Target           string   `json:"target"`
	TolerancePercent float64  `json:"tolerance_percent"`
	Shown            int      `json:"shown"`
}

func newProposalOutput(p *domain.RouteProposal) proposalOutput {
	return proposalOutput{
		Token:            p.Token,
		Status:           string(p.Status),
		Signature:        p.Signature,
		Nodes:            p.NodeNames,
		NodeIDs:          p.NodeIDs,
		SegmentIDs:       p.SegmentIDs,
		LengthM:          p.LengthM,
		LengthKm:         p.LengthKm(),
		DurationMin:      p.DurationMin,
		Target:           p.Target.String(),
		TolerancePercent: p.TolerancePercent,
		Shown:            p.Shown,
	}
}

func printProposal(cmd *cobra.Command, p *domain.RouteProposal) error {
	if routeJSON {
		data, err := json.MarshalIndent(newProposalOutput(p), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal proposal: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	switch p.Status {
	case domain.ProposalAccepted:
		cmd.Println("Accepted:")
	case domain.ProposalCancelled:
		cmd.Println("Cancelled. Last proposal was:")
	default:
		cmd.Printf("Route #%d for %s (±%s%%):\n", p.Shown, p.Target, formatPercent(p.TolerancePercent))
	}
	cmd.Printf("  %s\n", p.ChainLabel())
	cmd.Printf("  Length:   %s\n", p.LengthLabel())
	cmd.Printf("  Duration: %s\n", p.DurationLabel())
	if p.Status == domain.ProposalOpen {
		cmd.Printf("  Session:  %s\n", p.Token)
	}
	return nil
}

func formatPercent(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
