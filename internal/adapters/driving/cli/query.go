package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/services"
)

var (
	queryNamespace string
	queryTopK      int
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the knowledge base",
	Long: `Embeds the query and returns the most relevant entries of the namespace,
each with up to three matching snippets.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryNamespace, "namespace", "n", "", "organisation namespace (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", services.DefaultTopK, "maximum number of entries")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	tenant, err := cliTenant(queryNamespace)
	if err != nil {
		return err
	}

	a, err := openApp(cmdContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	results, err := a.retrieval.Retrieve(cmdContext(cmd), tenant, strings.Join(args, " "), queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, results)
	}
	outputQueryResults(cmd, results)
	return nil
}

func outputQueryResults(cmd *cobra.Command, results []domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Title (Score)
		title := results[i].Entry.Title
		if title == "" {
			title = results[i].Entry.Key
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		cmd.Printf("      Entry: %s\n", results[i].Entry.ID)
		if results[i].URL != "" {
			cmd.Printf("      URL:   %s\n", results[i].URL)
		}
		for _, snippet := range results[i].Snippets {
			cmd.Printf("      > %s\n", oneLine(snippet, 160))
		}
		cmd.Println()
	}
}

// oneLine collapses whitespace and truncates to limit runes.
func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
