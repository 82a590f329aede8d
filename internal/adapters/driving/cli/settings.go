package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change indexing settings",
	Long: `Settings live in config.toml under the config directory:

  [rag]
  enabled = true
  chunk_size = 1000
  chunk_overlap = 200

  [embedding]
  requests_per_second = 0

  [[embedding.configs]]
  id = "local"
  provider = "ollama"
  model_name = "nomic-embed-text"`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable indexing and search",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setEnabled(cmd, true)
	},
}

var settingsDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable indexing and search",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setEnabled(cmd, false)
	},
}

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking [size] [overlap]",
	Short: "Set chunk size and overlap in characters",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsChunking,
}

var embeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Manage embedding configs",
}

var embeddingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace an embedding config",
	Long: `Adds an embedding config. A config with the same --id is replaced in place.
The first config is the default used by index, reindex and search.

For OpenAI-compatible providers the API key is prompted for when --api-key
is not given. Leave it empty to fall back to OPENAI_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runEmbeddingAdd,
}

var embeddingRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove an embedding config",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmbeddingRemove,
}

var embeddingTestCmd = &cobra.Command{
	Use:   "test [id]",
	Short: "Check that an embedding provider is reachable",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmbeddingTest,
}

var (
	embeddingID       string
	embeddingName     string
	embeddingProvider string
	embeddingModel    string
	embeddingURL      string
	embeddingAPIKey   string
)

// passwordReader reads a secret from the terminal. Tests replace it.
var passwordReader = readPassword

func init() {
	f := embeddingAddCmd.Flags()
	f.StringVar(&embeddingID, "id", "", "config ID (generated when empty)")
	f.StringVar(&embeddingName, "name", "", "display name")
	f.StringVar(&embeddingProvider, "provider", string(domain.AIProviderOpenAI), "provider: openai or ollama")
	f.StringVar(&embeddingModel, "model", "", "model name (provider default when empty)")
	f.StringVar(&embeddingURL, "url", "", "provider base URL")
	f.StringVar(&embeddingAPIKey, "api-key", "", "API key for OpenAI-compatible providers")

	embeddingCmd.AddCommand(embeddingAddCmd, embeddingRemoveCmd, embeddingTestCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsEnableCmd, settingsDisableCmd, settingsChunkingCmd, embeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsView is the shape printed by --output json|yaml. API keys are masked.
type settingsView struct {
	Enabled           bool                  `json:"enabled" yaml:"enabled"`
	ChunkSize         int                   `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap      int                   `json:"chunk_overlap" yaml:"chunk_overlap"`
	RequestsPerSecond float64               `json:"requests_per_second" yaml:"requests_per_second"`
	EmbeddingConfigs  []embeddingConfigView `json:"embedding_configs" yaml:"embedding_configs"`
}

type embeddingConfigView struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model_name" yaml:"model_name"`
	APIURL   string `json:"api_url,omitempty" yaml:"api_url,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

func newSettingsView(s *domain.RAGSettings) settingsView {
	view := settingsView{
		Enabled:           s.Enabled,
		ChunkSize:         s.ChunkSize,
		ChunkOverlap:      s.ChunkOverlap,
		RequestsPerSecond: s.RequestsPerSecond,
		EmbeddingConfigs:  make([]embeddingConfigView, 0, len(s.EmbeddingConfigs)),
	}
	for _, c := range s.EmbeddingConfigs {
		cv := embeddingConfigView{
			ID:       c.ID,
			Name:     c.Name,
			Provider: c.EffectiveProvider().String(),
			Model:    c.ModelName,
			APIURL:   c.APIURL,
		}
		if c.APIKey != "" {
			cv.APIKey = maskAPIKey(c.APIKey)
		}
		view.EmbeddingConfigs = append(view.EmbeddingConfigs, cv)
	}
	return view
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	view := newSettingsView(settings)
	if handled, err := writeStructured(cmd, view); err != nil || handled {
		return err
	}

	cmd.Println("RAG settings:")
	cmd.Printf("  Enabled:       %t\n", view.Enabled)
	cmd.Printf("  Chunk size:    %d\n", view.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", view.ChunkOverlap)
	if view.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit:    %g requests/s\n", view.RequestsPerSecond)
	} else {
		cmd.Println("  Rate limit:    unlimited")
	}
	cmd.Println()

	if len(view.EmbeddingConfigs) == 0 {
		cmd.Println("No embedding configs. Add one with `sercha-notes settings embedding add`.")
		return nil
	}

	cmd.Println("Embedding configs:")
	for i, c := range view.EmbeddingConfigs {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		cmd.Printf("  %s %s (%s)\n", marker, c.ID, c.Name)
		cmd.Printf("      provider: %s  model: %s\n", c.Provider, c.Model)
		if c.APIURL != "" {
			cmd.Printf("      url: %s\n", c.APIURL)
		}
		if c.APIKey != "" {
			cmd.Printf("      api key: %s\n", c.APIKey)
		}
	}
	return nil
}

func setEnabled(cmd *cobra.Command, enabled bool) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetEnabled(enabled); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if enabled {
		cmd.Println("RAG enabled.")
	} else {
		cmd.Println("RAG disabled.")
	}
	return nil
}

func runSettingsChunking(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	size, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: chunk size %q is not a number", domain.ErrInvalidInput, args[0])
	}
	overlap, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: chunk overlap %q is not a number", domain.ErrInvalidInput, args[1])
	}

	if err := settingsService.SetChunking(size, overlap); err != nil {
		return err
	}
	cmd.Printf("Chunking set to %d characters with %d overlap.\n", size, overlap)
	cmd.Println("Run `sercha-notes reindex` after resetting documents to apply it to existing notes.")
	return nil
}

func runEmbeddingAdd(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider := domain.AIProvider(strings.ToLower(embeddingProvider))
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q (choose openai or ollama)", domain.ErrInvalidInput, embeddingProvider)
	}

	apiKey := embeddingAPIKey
	if apiKey == "" && provider.RequiresAPIKey() {
		cmd.Print("API key (empty to use OPENAI_API_KEY): ")
		apiKey = passwordReader()
		cmd.Println()
	}

	cfg := domain.EmbeddingConfig{
		ID:        embeddingID,
		Name:      embeddingName,
		Provider:  provider,
		APIKey:    apiKey,
		APIURL:    embeddingURL,
		ModelName: embeddingModel,
	}
	if err := settingsService.AddEmbeddingConfig(cfg); err != nil {
		return fmt.Errorf("failed to add embedding config: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	added := findAdded(settings, embeddingID)
	if added == nil {
		cmd.Println("Embedding config saved.")
		return nil
	}
	cmd.Printf("Saved embedding config %s (%s, %s).\n", added.ID, added.EffectiveProvider(), added.ModelName)
	return nil
}

// findAdded returns the config just written: the one with id, or the last
// entry when the ID was generated.
func findAdded(settings *domain.RAGSettings, id string) *domain.EmbeddingConfig {
	configs := settings.EmbeddingConfigs
	if len(configs) == 0 {
		return nil
	}
	if id == "" {
		return &configs[len(configs)-1]
	}
	for i := range configs {
		if configs[i].ID == id {
			return &configs[i]
		}
	}
	return nil
}

func runEmbeddingRemove(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.RemoveEmbeddingConfig(args[0]); err != nil {
		return fmt.Errorf("failed to remove embedding config: %w", err)
	}
	cmd.Printf("Removed embedding config %s.\n", args[0])
	return nil
}

func runEmbeddingTest(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	if err := settingsService.ValidateEmbeddingConfig(cmd.Context(), id); err != nil {
		return fmt.Errorf("embedding provider check failed: %w", err)
	}

	name := id
	if name == "" {
		name = "default config"
	}
	cmd.Printf("✓ %s is reachable.\n", name)
	return nil
}

func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
