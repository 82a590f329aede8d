package driven

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// IndexRepository persists documents, chunks and embeddings.
//
// Chunks are written under a generation number. Readers only see chunks of
// a document's active generation, so a re-index never exposes a mix of old
// and new chunks.
type IndexRepository interface {
	// UpsertDocument stores or updates a document keyed by FilePath and
	// returns its ID. An existing row keeps its ID and active generation.
	UpsertDocument(ctx context.Context, doc *domain.Document) (string, error)

	// GetDocument retrieves a document by file path.
	// Returns nil, nil when no document exists for the path.
	GetDocument(ctx context.Context, filePath string) (*domain.Document, error)

	// GetAllDocuments returns every known document.
	GetAllDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and, transitively, its chunks and
	// embeddings. Returns false when nothing was deleted.
	DeleteDocument(ctx context.Context, filePath string) (bool, error)

	// AddChunk stores a chunk and returns its ID.
	AddChunk(ctx context.Context, chunk *domain.Chunk) (string, error)

	// GetChunks returns the active-generation chunks of a document sorted by ChunkIndex.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteChunksForDocument removes every chunk of a document, across all
	// generations, cascading to embeddings.
	DeleteChunksForDocument(ctx context.Context, documentID string) error

	// AddEmbedding stores an embedding and returns its ID. A second
	// embedding for the same chunk and model replaces the first.
	AddEmbedding(ctx context.Context, embedding *domain.Embedding) (string, error)

	// GetAllEmbeddings returns active-generation embeddings joined with chunk
	// content and document path. An empty model returns every model.
	GetAllEmbeddings(ctx context.Context, model string) ([]domain.StoredEmbedding, error)

	// BeginGeneration allocates a generation number for a new indexing
	// attempt. Numbers are strictly increasing per document.
	BeginGeneration(ctx context.Context, documentID string) (int64, error)

	// ActivateGeneration makes doc.Generation the visible generation for
	// doc.ID and writes doc's status, model, hash and content in the same
	// transaction, deleting chunks of older generations. If a newer
	// generation is already active, the chunks of doc.Generation are
	// discarded and domain.ErrStaleGeneration is returned.
	ActivateGeneration(ctx context.Context, doc *domain.Document) error

	// Close releases resources.
	Close() error
}
