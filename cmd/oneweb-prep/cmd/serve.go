package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/oneweb-prep/internal/auth"
	"github.com/mfenderov/oneweb-prep/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server for section retrieval.

The server communicates via stdio and provides two tools:
  - search_sections: Search indexed sections by query
  - get_section: Get a specific section by ID

Example:
  oneweb-prep serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	runCfg := opts.Apply(GetConfig())

	esClient, err := newSearchClient(runCfg, auth.Resolve(runCfg.Elasticsearch.APIKey, runCfg.Identity))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if !esClient.Ping(ctx) {
		slog.Warn("elasticsearch not reachable, tool calls will fail until it is", "addresses", runCfg.Elasticsearch.Addresses)
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    runCfg.MCP.Name,
		Version: runCfg.MCP.Version,
	}, esClient)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
