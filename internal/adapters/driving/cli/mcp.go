package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/routy-labs/routy/internal/adapters/driving/mcp"
)

var (
	mcpHTTPAddr string
	mcpRate     float64
	mcpBurst    int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --http to serve the streamable HTTP transport instead. HTTP mode also
exposes Prometheus metrics at /metrics.

Tools: recommend_route, alternative_route, accept_route, cancel_route,
precalculate_routes.

Examples:
  # Stdio mode (default)
  routy mcp

  # HTTP mode
  routy mcp --http :8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "routy": {
        "command": "/path/to/routy",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address, e.g. :8080 (empty = stdio)")
	mcpCmd.Flags().Float64Var(&mcpRate, "rate", mcp.DefaultRequestsPerSecond, "sustained tool calls per second")
	mcpCmd.Flags().IntVar(&mcpBurst, "burst", mcp.DefaultBurst, "maximum burst of tool calls")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if liveRecommender == nil {
		return errors.New("route recommender not configured")
	}
	if mcpRate <= 0 || mcpBurst <= 0 {
		return errors.New("--rate and --burst must be positive")
	}

	ports := &mcp.Ports{
		Recommender: liveRecommender,
		Precalc:     precalculator,
		Graph:       graphService,
		Usage:       usageService,
	}

	server, err := mcp.NewServer(ports, mcp.WithRateLimit(mcpRate, mcpBurst))
	if err != nil {
		return err
	}

	stop := startScheduler(cmd.Context())
	defer stop()

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s (metrics at /metrics)\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}
