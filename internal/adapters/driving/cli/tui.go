package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

var (
	tuiLimit     int
	tuiThreshold float64
	tuiConfigID  string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface for searching notes and
browsing indexed documents.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / toggle preview
  /        - New search
  Esc      - Back
  q        - Quit (from the menu)`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of results")
	tuiCmd.Flags().Float64VarP(&tuiThreshold, "threshold", "t", 0, "minimum similarity score")
	tuiCmd.Flags().StringVarP(&tuiConfigID, "config", "c", "", "embedding config ID (default: first config)")
	rootCmd.AddCommand(tuiCmd)
}

// newTUIPorts collects the ports the TUI needs from the configured services.
func newTUIPorts() *tui.Ports {
	return &tui.Ports{
		Search:   searchService,
		Indexing: indexingService,
		Stats:    statsService,
		Options: domain.SearchOptions{
			MaxResults:          tuiLimit,
			SimilarityThreshold: tuiThreshold,
			EmbeddingConfigID:   tuiConfigID,
		},
	}
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(newTUIPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
