package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-notes/internal/logger"
)

// Ensure NotesService implements the interface.
var _ driving.NotesService = (*NotesService)(nil)

// NotesService feeds note files from disk into the indexing service.
type NotesService struct {
	indexer driving.IndexingService
	loader  driven.NoteLoader
}

// NewNotesService creates a new notes service.
func NewNotesService(indexer driving.IndexingService, loader driven.NoteLoader) *NotesService {
	return &NotesService{
		indexer: indexer,
		loader:  loader,
	}
}

// IndexFile reads and indexes one note.
func (s *NotesService) IndexFile(ctx context.Context, path, embeddingConfigID string) driving.EmbedResult {
	note, err := s.loader.Load(ctx, path)
	if err != nil {
		return driving.EmbedResult{Message: err.Error(), Err: err}
	}
	return s.indexer.EmbedDocument(ctx, driving.EmbedRequest{
		FilePath:          note.FilePath,
		Content:           note.Content,
		Title:             note.Title,
		EmbeddingConfigID: embeddingConfigID,
		FileSize:          note.Size,
		LastModified:      note.ModifiedAt,
	})
}

// IndexTree indexes every note under dir. Unchanged notes are reported
// as skipped. If ctx is cancelled, unvisited notes count as failed.
func (s *NotesService) IndexTree(
	ctx context.Context, dir, embeddingConfigID string, onProgress driving.ProgressFunc,
) driving.BatchResult {
	logger.Section("Index " + dir)

	paths, err := s.loader.Walk(ctx, dir)
	if err != nil {
		logger.Warn("Walk %s: %v", dir, err)
		return driving.BatchResult{}
	}

	result := driving.BatchResult{Total: len(paths)}
	for i, path := range paths {
		if ctx.Err() != nil {
			result.Failed += len(paths) - i
			break
		}
		if onProgress != nil {
			onProgress(i+1, len(paths), path)
		}

		res := s.IndexFile(ctx, path, embeddingConfigID)
		switch {
		case !res.Success:
			result.Failed++
		case res.ChunksCount == 0:
			result.Skipped++
		default:
			result.Success++
		}
	}
	return result
}

// Watch indexes notes under dir as they are created or written and
// removes them from the index when deleted or renamed. New
// subdirectories are watched as they appear. Events are handled one at
// a time. Watch returns nil when ctx is cancelled.
func (s *NotesService) Watch(ctx context.Context, dir string, onEvent func(driving.NoteEvent)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return err
	}
	logger.Info("Watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev, handled := s.handleEvent(ctx, watcher, event); handled && onEvent != nil {
				onEvent(ev)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher: %v", err)
		}
	}
}

// dirWatcher is the subset of *fsnotify.Watcher used by handleEvent.
type dirWatcher interface {
	Add(name string) error
}

func (s *NotesService) handleEvent(
	ctx context.Context, watcher dirWatcher, event fsnotify.Event,
) (driving.NoteEvent, bool) {
	path := event.Name

	switch {
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if event.Has(fsnotify.Create) {
				if err := addTree(watcher, path); err != nil {
					logger.Warn("Watch %s: %v", path, err)
				}
			}
			return driving.NoteEvent{}, false
		}
		if !s.loader.IsNote(path) {
			return driving.NoteEvent{}, false
		}
		logger.Debug("Watcher: %s changed", path)
		return driving.NoteEvent{FilePath: path, Result: s.IndexFile(ctx, path, "")}, true

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if !s.loader.IsNote(path) {
			return driving.NoteEvent{}, false
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		removed, err := s.indexer.RemoveDocument(ctx, abs)
		if err != nil {
			logger.Warn("Watcher: remove %s: %v", abs, err)
			return driving.NoteEvent{}, false
		}
		if !removed {
			return driving.NoteEvent{}, false
		}
		return driving.NoteEvent{FilePath: abs, Removed: true}, true
	}

	return driving.NoteEvent{}, false
}

// addTree watches dir and every non-hidden subdirectory.
func addTree(watcher dirWatcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A subdirectory removed mid-walk is fine; a missing root is not.
			if path != dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if path == dir && !d.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
