package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/oneweb-prep/internal/auth"
	"github.com/mfenderov/oneweb-prep/internal/render"
	"github.com/mfenderov/oneweb-prep/pkg/models"
	"github.com/spf13/cobra"
)

var (
	searchLimit    int
	searchFormat   string
	searchCategory string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed sections",
	Long: `Search the indexed product sections.

Examples:
  # Basic search
  oneweb-prep search "tax software"

  # Limit results to one category
  oneweb-prep search "research" --category legal --limit 5

  # JSON output for scripting
  oneweb-prep search "compliance" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Only return sections of this category")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCfg := opts.Apply(GetConfig())
	esClient, err := newSearchClient(runCfg, auth.Resolve(runCfg.Elasticsearch.APIKey, runCfg.Identity))
	if err != nil {
		return err
	}

	req := models.SearchRequest{Query: args[0], Top: searchLimit}
	if searchCategory != "" {
		req.Filter = &models.TermFilter{Field: "category", Value: searchCategory}
	}

	results, err := esClient.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results.Documents) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(results.Documents, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Found %d results:\n\n", len(results.Documents))
	for i, doc := range results.Documents {
		title := render.Title(doc.Content)
		if title == "" {
			title = doc.Name
		}
		content, err := render.ToMarkdown(doc.Content)
		if err != nil {
			content = doc.Content
		}
		if len(content) > 500 {
			content = content[:500] + "..."
		}

		fmt.Fprintf(out, "─── Result %d ───\n", i+1)
		fmt.Fprintf(out, "Title:     %s\n", title)
		fmt.Fprintf(out, "URL:       %s\n", doc.SourcePage)
		fmt.Fprintf(out, "ID:        %s\n", doc.ID)
		fmt.Fprintf(out, "Geography: %s\n", doc.Geography)
		fmt.Fprintf(out, "Content:\n%s\n\n", content)
	}

	return nil
}
