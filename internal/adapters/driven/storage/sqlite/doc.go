// Package sqlite provides the SQLite implementation of driven.IndexRepository.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Chunks reference documents and embeddings reference chunks with
// ON DELETE CASCADE, so deleting a document removes its whole index.
//
// # Generations
//
// Every indexing attempt writes chunks under a generation number taken from
// documents.generation_seq. ActivateGeneration swaps documents.generation in
// a single transaction; queries join on it so readers only ever see one
// complete chunk set per document.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-notes/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
