package driven

import (
	"context"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// NoteLoader reads note files from the local filesystem.
type NoteLoader interface {
	// Load reads a single note.
	Load(ctx context.Context, path string) (*domain.Note, error)

	// Walk returns the paths of every note under dir, sorted.
	Walk(ctx context.Context, dir string) ([]string, error)

	// IsNote reports whether path has a supported note extension.
	IsNote(path string) bool
}
