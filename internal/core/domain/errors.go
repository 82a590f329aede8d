package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates the indexing core cannot run with the
	// current settings. It is raised before any state is mutated.
	ErrConfiguration = errors.New("configuration error")

	// ErrRAGDisabled indicates RAG is switched off globally.
	ErrRAGDisabled = fmt.Errorf("%w: RAG is disabled", ErrConfiguration)

	// ErrNoEmbeddingConfig indicates no embedding configuration exists.
	ErrNoEmbeddingConfig = fmt.Errorf("%w: no embedding configuration", ErrConfiguration)

	// ErrUnknownEmbeddingConfig indicates a requested config id does not resolve.
	ErrUnknownEmbeddingConfig = fmt.Errorf("%w: unknown embedding configuration", ErrConfiguration)

	// ErrEmbeddingProvider indicates a single embedding call failed.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrEmptyContent indicates chunking produced no chunks.
	ErrEmptyContent = errors.New("document has no indexable content")

	// ErrStaleGeneration indicates a newer indexing attempt already activated
	// its chunks for the same document.
	ErrStaleGeneration = errors.New("indexing attempt superseded")

	// ErrMalformedVector indicates a stored embedding could not be decoded.
	ErrMalformedVector = errors.New("malformed embedding vector")
)
