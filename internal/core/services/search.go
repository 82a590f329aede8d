package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-notes/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService ranks stored chunks by cosine similarity to a query.
type SearchService struct {
	repo     driven.IndexRepository
	embedder driven.EmbeddingClient
	settings driven.SettingsSource
}

// NewSearchService creates a new search service.
func NewSearchService(
	repo driven.IndexRepository,
	embedder driven.EmbeddingClient,
	settings driven.SettingsSource,
) *SearchService {
	return &SearchService{
		repo:     repo,
		embedder: embedder,
		settings: settings,
	}
}

// SearchDocuments embeds query with the selected model and returns the
// best matching chunks. Only embeddings of the same model are compared.
// Results are ordered by similarity descending, then chunk ID ascending.
// Any configuration, provider or storage failure yields an empty slice.
func (s *SearchService) SearchDocuments(
	ctx context.Context, query string, opts domain.SearchOptions,
) []domain.SearchResult {
	logger.Section("Search Execution")
	defer logger.Timed("search")()

	results := []domain.SearchResult{}

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return results
	}

	settings, err := s.settings.RAGSettings()
	if err != nil {
		logger.Warn("Load settings: %v", err)
		return results
	}
	cfg, err := settings.ResolveEmbeddingConfig(opts.EmbeddingConfigID)
	if err != nil {
		logger.Debug("Search unavailable: %v", err)
		return results
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = domain.DefaultMaxResults
	}
	logger.Debug("Query: %q, model=%s, limit=%d, threshold=%.3f",
		query, cfg.ModelName, limit, opts.SimilarityThreshold)

	queryVec, err := s.embedder.Embed(ctx, query, *cfg)
	if err != nil || len(queryVec) == 0 {
		logger.Warn("Embed query: %v", err)
		return results
	}

	stored, err := s.repo.GetAllEmbeddings(ctx, cfg.ModelName)
	if err != nil {
		logger.Warn("Load embeddings: %v", err)
		return results
	}

	skipped := 0
	for i := range stored {
		e := &stored[i]
		vec, err := domain.DecodeVector(e.Vector)
		if err != nil || len(vec) != len(queryVec) {
			skipped++
			continue
		}
		sim := CosineSimilarity(queryVec, vec)
		if sim < opts.SimilarityThreshold {
			continue
		}
		results = append(results, domain.SearchResult{
			FilePath:   e.FilePath,
			Content:    e.Content,
			Similarity: sim,
			DocumentID: e.DocumentID,
			ChunkID:    e.ChunkID,
		})
	}
	if skipped > 0 {
		logger.Debug("Skipped %d malformed vectors", skipped)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	logger.Debug("Compared %d embeddings, returning %d results", len(stored), len(results))
	return results
}

// CosineSimilarity returns (a·b) / (|a|·|b|) clamped to [-1, 1]. It is 0
// when either vector has zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	// One square root keeps cos(v, v) exactly 1.
	sim := dot / math.Sqrt(normA*normB)
	return math.Max(-1, math.Min(1, sim))
}
