package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// SearchInput is the input schema for the search_notes tool.
type SearchInput struct {
	Query     string  `json:"query" jsonschema:"the natural-language query"`
	Limit     int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity, from -1 to 1 (default 0)"`
	ConfigID  string  `json:"config_id,omitempty" jsonschema:"embedding config id; the first config is used when empty"`
}

// SearchOutput is the output schema for the search_notes tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single matching chunk.
type SearchResultOutput struct {
	FilePath   string  `json:"file_path"`
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// StatsInput is the (empty) input schema for the rag_stats tool.
type StatsInput struct{}

// IndexInput is the input schema for the index_note tool.
// With Content set the note is indexed from it; otherwise FilePath is read from disk.
type IndexInput struct {
	FilePath string `json:"file_path" jsonschema:"path of the note; the document key"`
	Content  string `json:"content,omitempty" jsonschema:"note text; when empty the file is read from disk"`
	Title    string `json:"title,omitempty" jsonschema:"optional title"`
	ConfigID string `json:"config_id,omitempty" jsonschema:"embedding config id"`
}

// IndexOutput is the output schema for the index_note tool.
type IndexOutput struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	DocumentID      string `json:"document_id,omitempty"`
	ChunksCount     int    `json:"chunks_count"`
	EmbeddingsCount int    `json:"embeddings_count"`
}

func indexOutput(res driving.EmbedResult) IndexOutput {
	return IndexOutput{
		Success:         res.Success,
		Message:         res.Message,
		DocumentID:      res.DocumentID,
		ChunksCount:     res.ChunksCount,
		EmbeddingsCount: res.EmbeddingsCount,
	}
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_notes",
		Description: "Semantic search across indexed notes; returns the best matching chunks",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rag_stats",
		Description: "Document, chunk and embedding counts for the note index",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_note",
		Description: "Index or re-index a single note",
	}, s.handleIndex)
}

// handleSearch handles the search_notes tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results := s.ports.Search.SearchDocuments(ctx, input.Query, domain.SearchOptions{
		MaxResults:          input.Limit,
		SimilarityThreshold: input.Threshold,
		EmbeddingConfigID:   input.ConfigID,
	})

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			FilePath:   results[i].FilePath,
			DocumentID: results[i].DocumentID,
			ChunkID:    results[i].ChunkID,
			Similarity: results[i].Similarity,
			Content:    results[i].Content,
		}
	}

	return nil, output, nil
}

// handleStats handles the rag_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, domain.RAGStats, error) {
	if s.ports.Stats == nil {
		return nil, domain.RAGStats{}, nil
	}
	return nil, s.ports.Stats.GetRAGStats(ctx), nil
}

// handleIndex handles the index_note tool invocation.
// Indexing failures are reported in the result, not as tool errors.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	if strings.TrimSpace(input.FilePath) == "" {
		return nil, IndexOutput{}, fmt.Errorf("%w: file_path is required", domain.ErrInvalidInput)
	}
	// Stored paths are absolute.
	path, err := filepath.Abs(input.FilePath)
	if err != nil {
		return nil, IndexOutput{}, fmt.Errorf("%w: file_path %q: %v", domain.ErrInvalidInput, input.FilePath, err)
	}

	if input.Content == "" {
		if s.ports.Notes == nil {
			return nil, IndexOutput{}, ErrIndexingUnavailable
		}
		return nil, indexOutput(s.ports.Notes.IndexFile(ctx, path, input.ConfigID)), nil
	}

	if s.ports.Indexing == nil {
		return nil, IndexOutput{}, ErrIndexingUnavailable
	}
	return nil, indexOutput(s.ports.Indexing.EmbedDocument(ctx, driving.EmbedRequest{
		FilePath:          path,
		Content:           input.Content,
		Title:             input.Title,
		EmbeddingConfigID: input.ConfigID,
		FileSize:          int64(len(input.Content)),
	})), nil
}
