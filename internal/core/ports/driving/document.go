package driving

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// EmbedRequest describes one note to index.
type EmbedRequest struct {
	// FilePath is the note's unique key.
	FilePath string

	// Content is the full note text.
	Content string

	// Title is optional; the file name is used when empty.
	Title string

	// EmbeddingConfigID selects the model; empty means the first config.
	EmbeddingConfigID string

	// FileSize is the note size in bytes.
	FileSize int64

	// LastModified is the note modification time in epoch milliseconds.
	LastModified int64
}

// EmbedResult is the structured outcome of indexing one document.
type EmbedResult struct {
	Success         bool   `json:"success" yaml:"success"`
	Message         string `json:"message" yaml:"message"`
	DocumentID      string `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	ChunksCount     int    `json:"chunks_count" yaml:"chunks_count"`
	EmbeddingsCount int    `json:"embeddings_count" yaml:"embeddings_count"`

	// Err carries the classified failure, if any.
	Err error `json:"-" yaml:"-"`
}

// BatchResult summarises a full re-index.
// Success + Failed + Skipped always equals Total.
type BatchResult struct {
	Success int `json:"success" yaml:"success"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Total   int `json:"total" yaml:"total"`
}

// ProgressFunc is called before each document of a batch is processed.
// index is 1-based.
type ProgressFunc func(index, total int, filePath string)

// IndexingService turns notes into embedded chunks.
type IndexingService interface {
	// EmbedDocument indexes a single note. It never returns an error;
	// failures are described by the result.
	EmbedDocument(ctx context.Context, req EmbedRequest) EmbedResult

	// EmbedAllDocuments re-indexes every known document, skipping
	// up-to-date ones.
	EmbedAllDocuments(ctx context.Context, onProgress ProgressFunc) BatchResult

	// ResetDocument drops a document's chunks and embeddings and marks it
	// pending so the next re-index rebuilds it.
	ResetDocument(ctx context.Context, filePath string) error

	// RemoveDocument deletes a document and its index.
	RemoveDocument(ctx context.Context, filePath string) (bool, error)

	// ListDocuments returns every known document.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetDocument returns the document for a path, or domain.ErrNotFound.
	GetDocument(ctx context.Context, filePath string) (*domain.Document, error)
}
