package mcp

import (
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers similarity queries.
	Search driving.SearchService

	// Stats reports corpus counters.
	Stats driving.StatsService

	// Indexing indexes raw note content and lists documents.
	Indexing driving.IndexingService

	// Notes indexes note files by path.
	Notes driving.NotesService
}

// Validate ensures all required ports are set.
// Only Search is required; tools backed by a nil port report an error.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
