// Package cli provides the cobra command tree for sercha-notes.
// It is a driving adapter: every command calls a driving port.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-notes/internal/logger"
)

// skipServices marks commands that run without the service graph.
const skipServices = "skip-services"

var version = "dev"

// Driving ports used by the commands. Set by SetServices or the bootstrap.
var (
	indexingService driving.IndexingService
	searchService   driving.SearchService
	statsService    driving.StatsService
	settingsService driving.SettingsService
	notesService    driving.NotesService
)

// Global flags.
var (
	verbose      bool
	dataDir      string
	configDir    string
	outputFormat string
)

var (
	bootstrap Bootstrap
	release   func()
)

// Services bundles the driving ports the commands call.
type Services struct {
	Indexing driving.IndexingService
	Search   driving.SearchService
	Stats    driving.StatsService
	Settings driving.SettingsService
	Notes    driving.NotesService
}

// Paths are the directories resolved from the global flags.
// Empty values select the adapters' defaults under ~/.sercha-notes.
type Paths struct {
	DataDir   string
	ConfigDir string
}

// Bootstrap builds the services once flags are parsed. The returned
// func releases whatever the services hold open.
type Bootstrap func(ctx context.Context, paths Paths) (*Services, func(), error)

var rootCmd = &cobra.Command{
	Use:   "sercha-notes",
	Short: "Semantic search over your notes",
	Long: `sercha-notes indexes plain-text and Markdown notes into paragraph chunks,
embeds each chunk with a configured embedding model and answers questions by
cosine similarity over the stored vectors.

Configure a model first:
  sercha-notes settings embedding add --provider ollama

Then index and search:
  sercha-notes index-dir ~/notes
  sercha-notes search "how do I rotate the signing key"`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "index directory (default ~/.sercha-notes/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.sercha-notes)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "output format: text, json or yaml")
}

// SetServices injects the driving ports directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	indexingService = s.Indexing
	searchService = s.Search
	statsService = s.Stats
	settingsService = s.Settings
	notesService = s.Notes
}

// SetBootstrap registers the function that builds services after flag parsing.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if release != nil {
			release()
			release = nil
		}
	}()

	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipServices] == "true" || bootstrap == nil || release != nil {
		return nil
	}

	done := logger.Timed("bootstrap")
	defer done()

	s, cleanup, err := bootstrap(cmd.Context(), Paths{DataDir: dataDir, ConfigDir: configDir})
	if err != nil {
		return err
	}
	SetServices(s)
	release = cleanup
	return nil
}
