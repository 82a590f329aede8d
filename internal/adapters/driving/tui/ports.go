// Package tui provides an interactive terminal user interface for sercha-notes.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Search answers queries. Required.
	Search driving.SearchService

	// Indexing backs the documents view. Optional.
	Indexing driving.IndexingService

	// Stats feeds the menu summary. Optional.
	Stats driving.StatsService

	// Options are applied to every query.
	Options domain.SearchOptions
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
