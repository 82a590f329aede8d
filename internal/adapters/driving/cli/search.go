package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchConfigID  string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed notes",
	Long: `Embeds the query with the selected model and ranks stored chunks by
cosine similarity. Only chunks embedded with the same model are compared.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of results")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0, "minimum similarity score")
	searchCmd.Flags().StringVarP(&searchConfigID, "config", "c", "", "embedding config ID (default: first config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON (same as --output json)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	if searchJSON {
		outputFormat = formatJSON
	}

	query := strings.Join(args, " ")
	results := searchService.SearchDocuments(cmd.Context(), query, domain.SearchOptions{
		MaxResults:          searchLimit,
		SimilarityThreshold: searchThreshold,
		EmbeddingConfigID:   searchConfigID,
	})

	handled, err := writeStructured(cmd, results)
	if err != nil || handled {
		return err
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, results[i].FilePath, results[i].Similarity)
		cmd.Printf("      %s\n", snippet(results[i].Content, 100))
		cmd.Println()
	}
	return nil
}
