package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchNoCache bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the embedding index",
	Long: `Embeds the query and prints the most similar corpus chunks by cosine
similarity. Useful for inspecting what the chat command grounds its
answers on.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchNoCache, "no-cache", false, "bypass the response cache")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	svc, cleanup, err := buildSearchService(cmd.Context(), !searchNoCache)
	if err != nil {
		return err
	}
	defer cleanup()

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.TopK
	}

	results, err := svc.Search(cmd.Context(), query, domain.SearchOptions{TopK: limit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, r.Chunk.Title, r.Similarity)
		cmd.Printf("      Source: %s (section %d)\n", r.Chunk.SourceID, r.Chunk.SectionIndex)

		snippet := r.Chunk.Text
		if len(snippet) > 160 {
			snippet = snippet[:160] + "..."
		}
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}
	return nil
}
