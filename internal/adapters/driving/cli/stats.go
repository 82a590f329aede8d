package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats := statsService.GetRAGStats(cmd.Context())
	handled, err := writeStructured(cmd, stats)
	if err != nil || handled {
		return err
	}

	cmd.Println("Index statistics:")
	cmd.Printf("  Documents:  %d\n", stats.TotalDocuments)
	cmd.Printf("    completed %d\n", stats.CompletedDocuments)
	cmd.Printf("    pending   %d\n", stats.PendingDocuments)
	cmd.Printf("    failed    %d\n", stats.FailedDocuments)
	cmd.Printf("  Chunks:     %d\n", stats.TotalChunks)
	cmd.Printf("  Embeddings: %d\n", stats.TotalEmbeddings)
	return nil
}
