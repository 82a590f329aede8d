package tui

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

type mockSearch struct {
	results []domain.SearchResult
	queries []string
}

func (m *mockSearch) SearchDocuments(_ context.Context, query string, _ domain.SearchOptions) []domain.SearchResult {
	m.queries = append(m.queries, query)
	return m.results
}

type mockStats struct {
	stats domain.RAGStats
}

func (m *mockStats) GetRAGStats(context.Context) domain.RAGStats { return m.stats }

type mockIndexing struct {
	driving.IndexingService
	docs []domain.Document
}

func (m *mockIndexing) ListDocuments(context.Context) ([]domain.Document, error) {
	return m.docs, nil
}
