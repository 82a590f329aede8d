package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/notes"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/services"
)

// letterEmbedder maps text to its letter histogram so texts sharing
// words score higher than unrelated ones.
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string, _ domain.EmbeddingConfig) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

type stubValidator struct {
	err error
}

func (v stubValidator) ValidateEmbedding(context.Context, domain.EmbeddingConfig) error {
	return v.err
}

type testEnv struct {
	dir      string
	settings *services.SettingsService
	indexing *services.IndexingService
}

var errProviderDown = errors.New("provider down")

// setupTestServices wires real services over memory stores and injects them.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	validator := stubValidator{}
	if strings.Contains(t.Name(), "Unreachable") {
		validator.err = errProviderDown
	}

	repo := memory.NewIndexStore()
	settings := services.NewSettingsService(memory.NewConfigStore(), validator)
	require.NoError(t, settings.AddEmbeddingConfig(domain.EmbeddingConfig{
		ID: "local", Provider: domain.AIProviderOllama, ModelName: "letters",
	}))

	indexing := services.NewIndexingService(repo, letterEmbedder{}, settings)
	SetServices(&Services{
		Indexing: indexing,
		Search:   services.NewSearchService(repo, letterEmbedder{}, settings),
		Stats:    services.NewStatsService(repo),
		Settings: settings,
		Notes:    services.NewNotesService(indexing, notes.NewLoader()),
	})
	t.Cleanup(func() { SetServices(nil) })

	return &testEnv{dir: t.TempDir(), settings: settings, indexing: indexing}
}

func (e *testEnv) writeNote(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	// Cobra keeps the first context a subcommand sees, so hand every
	// command this run's context.
	setContext(rootCmd, ctx)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, sub := range cmd.Commands() {
		setContext(sub, ctx)
	}
}

// resetFlags restores every flag to its default so tests stay independent.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
