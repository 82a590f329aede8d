package domain

// DefaultMaxResults is used when SearchOptions.MaxResults is not positive.
const DefaultMaxResults = 5

// SearchOptions configures a similarity query.
type SearchOptions struct {
	// MaxResults is the maximum number of results.
	MaxResults int

	// SimilarityThreshold drops results scoring below it.
	SimilarityThreshold float64

	// EmbeddingConfigID selects the model; empty means the first config.
	EmbeddingConfigID string
}

// SearchResult is a single ranked chunk. It is never persisted.
type SearchResult struct {
	// FilePath is the owning note's path.
	FilePath string `json:"file_path" yaml:"file_path"`

	// Content is the matched chunk text.
	Content string `json:"content" yaml:"content"`

	// Similarity is the cosine similarity to the query, in [-1, 1].
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// DocumentID is the owning document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// ChunkID is the matched chunk.
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`
}
