package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// Output formats accepted by --output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// writeStructured encodes v in the selected machine format. It reports
// false when the text format is selected and the caller should print.
func writeStructured(cmd *cobra.Command, v any) (bool, error) {
	if textOutput() {
		return false, nil
	}
	switch strings.ToLower(outputFormat) {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal output: %w", err)
		}
		cmd.Println(string(data))
		return true, nil
	case formatYAML:
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("failed to marshal output: %w", err)
		}
		return true, enc.Close()
	default:
		return true, fmt.Errorf("%w: unknown output format %q", domain.ErrInvalidInput, outputFormat)
	}
}

// textOutput reports whether --output selects human-readable text.
func textOutput() bool {
	f := strings.ToLower(outputFormat)
	return f == "" || f == formatText
}

// notePath makes a command-line path absolute so it matches stored paths.
func notePath(arg string) string {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	return abs
}

// snippet collapses whitespace and shortens s to n runes.
func snippet(s string, n int) string {
	flat := []rune(strings.Join(strings.Fields(s), " "))
	if len(flat) <= n {
		return string(flat)
	}
	return string(flat[:n-3]) + "..."
}

func printBatch(cmd *cobra.Command, label string, res driving.BatchResult) {
	cmd.Printf("%s: %d indexed, %d skipped, %d failed (%d total)\n",
		label, res.Success, res.Skipped, res.Failed, res.Total)
}
