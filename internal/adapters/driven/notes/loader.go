// Package notes reads plain-text and markdown notes from the local filesystem.
package notes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.NoteLoader = (*Loader)(nil)

// DefaultExtensions are the file extensions treated as notes.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// Loader reads notes from disk.
type Loader struct {
	extensions map[string]struct{}
}

// NewLoader creates a loader for the given extensions.
// With no extensions, DefaultExtensions are used.
func NewLoader(extensions ...string) *Loader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	l := &Loader{extensions: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		l.extensions[ext] = struct{}{}
	}
	return l
}

// IsNote reports whether path has a supported extension.
func (l *Loader) IsNote(path string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads the note at path.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, abs)
		}
		return nil, fmt.Errorf("stat note: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, abs)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read note: %w", err)
	}
	content := string(data)

	return &domain.Note{
		FilePath:   abs,
		Title:      extractTitle(content, abs),
		Content:    content,
		Size:       info.Size(),
		ModifiedAt: info.ModTime().UnixMilli(),
	}, nil
}

// Walk returns every note under dir, sorted. Hidden directories are skipped.
func (l *Loader) Walk(ctx context.Context, dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && IsHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if l.IsNote(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// IsHidden reports whether a file or directory name starts with a dot.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// extractTitle returns the first level-one heading, falling back to the
// file name without its extension.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			if title := strings.TrimSpace(strings.TrimPrefix(line, "#")); title != "" {
				return title
			}
		}
	}

	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
