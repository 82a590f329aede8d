package driven

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// AIConfigValidator validates embedding configurations by testing
// connectivity to the underlying provider.
type AIConfigValidator interface {
	// ValidateEmbedding pings the provider behind cfg.
	ValidateEmbedding(ctx context.Context, cfg domain.EmbeddingConfig) error
}
