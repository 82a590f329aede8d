// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - IndexRepository: Document, chunk and embedding persistence (SQLite or memory)
//   - EmbeddingClient: Embeds text with a selected model configuration
//   - EmbeddingService: A single provider/model endpoint used by EmbeddingClient adapters
//   - ConfigStore: Application configuration (TOML)
//   - SettingsSource: Resolved RAG settings injected into services
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
