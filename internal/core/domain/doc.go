// Package domain defines the core business entities for Sercha Notes.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An indexed note with its content hash and embedding status
//   - Chunk: An overlapping slice of a document, the unit of embedding
//   - Embedding: A serialised vector for one chunk under one model
//   - RAGSettings: The read-only configuration consumed by the indexing core
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
