package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

var (
	indexConfigID string
	indexQuiet    bool
)

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Index one or more note files",
	Long: `Reads each file, splits it into paragraph chunks and embeds every chunk.
Files whose content and model are unchanged since the last run are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

var indexDirCmd = &cobra.Command{
	Use:   "index-dir [dir]",
	Short: "Index every note under a directory",
	Long:  `Walks the directory, skipping hidden folders, and indexes .md, .markdown and .txt files.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexDir,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-index every known document",
	Long: `Re-embeds every stored document with the default embedding config.
Documents already completed with the current model are skipped.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	for _, c := range []*cobra.Command{indexCmd, indexDirCmd} {
		c.Flags().StringVarP(&indexConfigID, "config", "c", "", "embedding config ID (default: first config)")
	}
	for _, c := range []*cobra.Command{indexDirCmd, reindexCmd} {
		c.Flags().BoolVarP(&indexQuiet, "quiet", "q", false, "hide per-file progress")
	}
	rootCmd.AddCommand(indexCmd, indexDirCmd, reindexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if notesService == nil {
		return errors.New("notes service not configured")
	}

	failed := 0
	results := make(map[string]driving.EmbedResult, len(args))
	for _, arg := range args {
		path := notePath(arg)
		res := notesService.IndexFile(cmd.Context(), path, indexConfigID)
		results[path] = res
		if !res.Success {
			failed++
		}
		if textOutput() {
			printEmbedResult(cmd, path, res)
		}
	}

	if _, err := writeStructured(cmd, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d notes failed to index", failed, len(args))
	}
	return nil
}

func printEmbedResult(cmd *cobra.Command, path string, res driving.EmbedResult) {
	mark := "✓"
	if !res.Success {
		mark = "✗"
	}
	cmd.Printf("%s %s: %s", mark, path, res.Message)
	if res.ChunksCount > 0 {
		cmd.Printf(" (%d chunks, %d embeddings)", res.ChunksCount, res.EmbeddingsCount)
	}
	cmd.Println()
}

func progress(cmd *cobra.Command) driving.ProgressFunc {
	if indexQuiet {
		return nil
	}
	return func(index, total int, filePath string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", index, total, filePath)
	}
}

func runIndexDir(cmd *cobra.Command, args []string) error {
	if notesService == nil {
		return errors.New("notes service not configured")
	}

	res := notesService.IndexTree(cmd.Context(), notePath(args[0]), indexConfigID, progress(cmd))
	return reportBatch(cmd, "Indexed", res)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	res := indexingService.EmbedAllDocuments(cmd.Context(), progress(cmd))
	return reportBatch(cmd, "Re-indexed", res)
}

func reportBatch(cmd *cobra.Command, label string, res driving.BatchResult) error {
	handled, err := writeStructured(cmd, res)
	if err != nil {
		return err
	}
	if !handled {
		printBatch(cmd, label, res)
	}
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}
