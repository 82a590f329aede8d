package driven

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// EmbeddingClient embeds text with an explicitly selected model config.
// A failed call affects only the text it was asked to embed; callers
// decide whether to continue.
type EmbeddingClient interface {
	// Embed returns the vector for text using cfg.
	Embed(ctx context.Context, text string, cfg domain.EmbeddingConfig) ([]float32, error)
}

// EmbeddingService generates vector embeddings from one provider endpoint
// and model.
//
// Implementations include:
//   - OpenAI-compatible APIs (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
