// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the query input and results view.
	ViewSearch
	// ViewDocuments lists indexed notes.
	ViewDocuments
	// ViewHelp is the keybindings view.
	ViewHelp
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SearchCompleted carries ranked chunks back to the search view.
// Search never fails; an empty slice covers every failure mode.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
}

// DocumentsLoaded carries the document list.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentChanged reports the outcome of a reset or remove.
type DocumentChanged struct {
	FilePath string
	Action   string
	Err      error
}

// StatsLoaded carries corpus counters for the menu.
type StatsLoaded struct {
	Stats domain.RAGStats
}

// ErrorOccurred is sent when an operation fails.
type ErrorOccurred struct {
	Err error
}
