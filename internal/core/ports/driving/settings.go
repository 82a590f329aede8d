package driving

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// SettingsService manages RAG settings.
type SettingsService interface {
	// Get retrieves current settings.
	Get() (*domain.RAGSettings, error)

	// Save persists settings.
	Save(settings *domain.RAGSettings) error

	// SetEnabled switches RAG on or off.
	SetEnabled(enabled bool) error

	// SetChunking updates chunk size and overlap.
	SetChunking(size, overlap int) error

	// AddEmbeddingConfig adds or replaces a config with the same ID.
	AddEmbeddingConfig(cfg domain.EmbeddingConfig) error

	// RemoveEmbeddingConfig deletes a config by ID.
	RemoveEmbeddingConfig(id string) error

	// ValidateEmbeddingConfig pings the provider behind a config.
	ValidateEmbeddingConfig(ctx context.Context, id string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.RAGSettings
}
