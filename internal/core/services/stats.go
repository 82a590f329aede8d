package services

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-notes/internal/logger"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService derives corpus counters from the index.
type StatsService struct {
	repo driven.IndexRepository
}

// NewStatsService creates a new stats service.
func NewStatsService(repo driven.IndexRepository) *StatsService {
	return &StatsService{repo: repo}
}

// GetRAGStats returns document, chunk and embedding counts. The embedding
// count spans every model. If any read fails all counters are zero.
func (s *StatsService) GetRAGStats(ctx context.Context) domain.RAGStats {
	docs, err := s.repo.GetAllDocuments(ctx)
	if err != nil {
		logger.Warn("Stats: list documents: %v", err)
		return domain.RAGStats{}
	}

	stats := domain.RAGStats{TotalDocuments: len(docs)}
	for i := range docs {
		switch docs[i].EmbeddingStatus {
		case domain.EmbeddingStatusCompleted:
			stats.CompletedDocuments++
		case domain.EmbeddingStatusPending, domain.EmbeddingStatusProcessing:
			stats.PendingDocuments++
		case domain.EmbeddingStatusFailed:
			stats.FailedDocuments++
		}

		chunks, err := s.repo.GetChunks(ctx, docs[i].ID)
		if err != nil {
			logger.Warn("Stats: chunks of %s: %v", docs[i].FilePath, err)
			return domain.RAGStats{}
		}
		stats.TotalChunks += len(chunks)
	}

	embeddings, err := s.repo.GetAllEmbeddings(ctx, "")
	if err != nil {
		logger.Warn("Stats: list embeddings: %v", err)
		return domain.RAGStats{}
	}
	stats.TotalEmbeddings = len(embeddings)

	return stats
}
