package driving

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// SearchService answers similarity queries over the index.
type SearchService interface {
	// SearchDocuments embeds the query and ranks stored chunks by cosine
	// similarity. Configuration or provider failures yield an empty slice.
	SearchDocuments(ctx context.Context, query string, opts domain.SearchOptions) []domain.SearchResult
}

// StatsService derives corpus-wide counters.
type StatsService interface {
	// GetRAGStats returns the counters, all zero if any read fails.
	GetRAGStats(ctx context.Context) domain.RAGStats
}
