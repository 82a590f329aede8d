package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

var watchSkipScan bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep the index in sync with a notes directory",
	Long: `Indexes the directory once, then watches it: created and modified notes are
re-indexed and deleted or renamed notes are removed from the index.
New subdirectories are picked up automatically. Press Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipScan, "no-scan", false, "skip the initial full scan")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if notesService == nil {
		return errors.New("notes service not configured")
	}

	dir := notePath(args[0])
	ctx := cmd.Context()

	if !watchSkipScan {
		res := notesService.IndexTree(ctx, dir, "", nil)
		printBatch(cmd, "Initial scan", res)
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	err := notesService.Watch(ctx, dir, func(ev driving.NoteEvent) {
		if ev.Removed {
			cmd.Printf("- %s removed\n", ev.FilePath)
			return
		}
		printEmbedResult(cmd, ev.FilePath, ev.Result)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Stopped watching.")
	return nil
}
