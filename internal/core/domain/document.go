package domain

import (
	"fmt"
	"time"
)

// EmbeddingStatus is the indexing state of a document.
// Transitions are pending -> processing -> {completed, failed}; a new
// indexing attempt may restart from any terminal state.
type EmbeddingStatus string

// Available embedding statuses.
const (
	// EmbeddingStatusPending means the document is known but not yet indexed.
	EmbeddingStatusPending EmbeddingStatus = "pending"

	// EmbeddingStatusProcessing means an indexing attempt is in flight.
	EmbeddingStatusProcessing EmbeddingStatus = "processing"

	// EmbeddingStatusCompleted means at least one chunk was embedded.
	EmbeddingStatusCompleted EmbeddingStatus = "completed"

	// EmbeddingStatusFailed means the last attempt produced no embeddings.
	EmbeddingStatusFailed EmbeddingStatus = "failed"
)

// IsValid returns true if the status is one of the four legal values.
func (s EmbeddingStatus) IsValid() bool {
	switch s {
	case EmbeddingStatusPending, EmbeddingStatusProcessing,
		EmbeddingStatusCompleted, EmbeddingStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for completed and failed.
func (s EmbeddingStatus) IsTerminal() bool {
	switch s {
	case EmbeddingStatusCompleted, EmbeddingStatusFailed:
		return true
	case EmbeddingStatusPending, EmbeddingStatusProcessing:
		return false
	default:
		return false
	}
}

// String returns the string representation.
func (s EmbeddingStatus) String() string {
	return string(s)
}

// ParseEmbeddingStatus converts a stored string into an EmbeddingStatus.
func ParseEmbeddingStatus(value string) (EmbeddingStatus, error) {
	status := EmbeddingStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: embedding status %q", ErrInvalidInput, value)
	}
	return status, nil
}

// Document represents one indexed note.
// FilePath is the unique key; re-indexing overwrites the row in place.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id" yaml:"id"`

	// FilePath is the note location and the document's natural key.
	FilePath string `json:"file_path" yaml:"file_path"`

	// Title is the human-readable title.
	Title string `json:"title" yaml:"title"`

	// Content is the full note text.
	Content string `json:"-" yaml:"-"`

	// ContentHash is the fingerprint of Content.
	ContentHash string `json:"content_hash" yaml:"content_hash"`

	// FileSize is the size of the note in bytes.
	FileSize int64 `json:"file_size" yaml:"file_size"`

	// LastModified is the note modification time in epoch milliseconds.
	LastModified int64 `json:"last_modified" yaml:"last_modified"`

	// EmbeddingStatus is the indexing state.
	EmbeddingStatus EmbeddingStatus `json:"embedding_status" yaml:"embedding_status"`

	// EmbeddingModel is the model used for the current index.
	EmbeddingModel string `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`

	// Generation is the chunk generation currently visible to readers.
	Generation int64 `json:"generation" yaml:"generation"`

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is when the document row was last written.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Chunk is a contiguous, possibly overlapping slice of a document.
// Offsets refer to the chunked reconstruction, not the original bytes.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Generation is the indexing attempt that wrote this chunk.
	Generation int64

	// ChunkIndex is the 0-based position within the document.
	ChunkIndex int

	// Content is the trimmed chunk text.
	Content string

	// StartPosition is the offset where the chunk's accumulator began.
	StartPosition int

	// EndPosition is StartPosition plus the untrimmed accumulator length.
	EndPosition int

	// TokenCount is the estimated token count, ceil(len(Content)/4).
	TokenCount int
}

// Embedding is the vector for one chunk under one model.
// A chunk has at most one embedding per model.
type Embedding struct {
	// ID is the unique identifier for the embedding.
	ID string

	// ChunkID links to the parent Chunk.
	ChunkID string

	// Vector is the serialised float vector (see EncodeVector).
	Vector []byte

	// EmbeddingModel is the model that produced the vector.
	EmbeddingModel string

	// CreatedAt is when the embedding was stored.
	CreatedAt time.Time
}

// StoredEmbedding is an embedding joined with the chunk and document
// fields needed to build a search result.
type StoredEmbedding struct {
	Embedding

	// DocumentID is the owning document.
	DocumentID string

	// FilePath is the owning document's path.
	FilePath string

	// Content is the chunk text.
	Content string
}
