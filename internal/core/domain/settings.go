package domain

import "fmt"

const unknownDescription = "Unknown"

// Default chunking parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingConfig is one configured embedding model.
type EmbeddingConfig struct {
	// ID is the stable identifier used to select this config.
	ID string `json:"id" yaml:"id"`

	// Name is a display name.
	Name string `json:"name" yaml:"name"`

	// Provider selects the adapter. Empty means OpenAI-compatible.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// APIKey authenticates against the provider.
	APIKey string `json:"-" yaml:"-"`

	// APIURL is the provider base URL; empty uses the adapter default.
	APIURL string `json:"api_url,omitempty" yaml:"api_url,omitempty"`

	// ModelName is the model requested from the provider.
	ModelName string `json:"model_name" yaml:"model_name"`
}

// EffectiveProvider returns the provider, defaulting to OpenAI.
func (c EmbeddingConfig) EffectiveProvider() AIProvider {
	if c.Provider == "" {
		return AIProviderOpenAI
	}
	return c.Provider
}

// RAGSettings is the configuration surface read by the indexing core.
type RAGSettings struct {
	// Enabled switches indexing and search on or off globally.
	Enabled bool

	// ChunkSize is the chunk size budget in characters.
	ChunkSize int

	// ChunkOverlap is the number of trailing characters carried into the next chunk.
	ChunkOverlap int

	// EmbeddingConfigs are the configured models; the first is the default.
	EmbeddingConfigs []EmbeddingConfig

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// DefaultRAGSettings returns settings with sensible defaults.
// No embedding model is configured by default.
func DefaultRAGSettings() RAGSettings {
	return RAGSettings{
		Enabled:      true,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// ResolveEmbeddingConfig selects the config with the given id, or the
// first configured entry when id is empty.
func (s *RAGSettings) ResolveEmbeddingConfig(id string) (*EmbeddingConfig, error) {
	if !s.Enabled {
		return nil, ErrRAGDisabled
	}
	if len(s.EmbeddingConfigs) == 0 {
		return nil, ErrNoEmbeddingConfig
	}
	if id == "" {
		cfg := s.EmbeddingConfigs[0]
		return &cfg, nil
	}
	for i := range s.EmbeddingConfigs {
		if s.EmbeddingConfigs[i].ID == id {
			cfg := s.EmbeddingConfigs[i]
			return &cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEmbeddingConfig, id)
}

// DefaultModel returns the model name of the first config, or "" if none.
func (s *RAGSettings) DefaultModel() string {
	if len(s.EmbeddingConfigs) == 0 {
		return ""
	}
	return s.EmbeddingConfigs[0].ModelName
}
