package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	lastOpts domain.SearchOptions
	lastQ    string
}

func (m *mockSearchService) SearchDocuments(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) []domain.SearchResult {
	m.lastQ = query
	m.lastOpts = opts
	return m.results
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	stats domain.RAGStats
}

func (m *mockStatsService) GetRAGStats(_ context.Context) domain.RAGStats {
	return m.stats
}

// mockIndexingService is a mock implementation of driving.IndexingService.
type mockIndexingService struct {
	result    driving.EmbedResult
	lastReq   driving.EmbedRequest
	documents []domain.Document
	err       error
}

func (m *mockIndexingService) EmbedDocument(_ context.Context, req driving.EmbedRequest) driving.EmbedResult {
	m.lastReq = req
	return m.result
}

func (m *mockIndexingService) EmbedAllDocuments(_ context.Context, _ driving.ProgressFunc) driving.BatchResult {
	return driving.BatchResult{}
}

func (m *mockIndexingService) ResetDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexingService) RemoveDocument(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockIndexingService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockIndexingService) GetDocument(_ context.Context, filePath string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].FilePath == filePath {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockNotesService is a mock implementation of driving.NotesService.
type mockNotesService struct {
	result   driving.EmbedResult
	lastPath string
}

func (m *mockNotesService) IndexFile(_ context.Context, path, _ string) driving.EmbedResult {
	m.lastPath = path
	return m.result
}

func (m *mockNotesService) IndexTree(
	_ context.Context, _, _ string, _ driving.ProgressFunc,
) driving.BatchResult {
	return driving.BatchResult{}
}

func (m *mockNotesService) Watch(_ context.Context, _ string, _ func(driving.NoteEvent)) error {
	return nil
}
