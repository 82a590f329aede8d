package driving

import "context"

// NoteEvent reports what happened to one note during a scan or watch.
type NoteEvent struct {
	FilePath string
	Removed  bool
	Result   EmbedResult
}

// NotesService indexes note files from disk and keeps them in sync.
type NotesService interface {
	// IndexFile reads and indexes one note.
	IndexFile(ctx context.Context, path string, embeddingConfigID string) EmbedResult

	// IndexTree indexes every note under dir sequentially.
	IndexTree(ctx context.Context, dir string, embeddingConfigID string, onProgress ProgressFunc) BatchResult

	// Watch blocks, re-indexing changed notes and removing deleted ones
	// until ctx is cancelled.
	Watch(ctx context.Context, dir string, onEvent func(NoteEvent)) error
}
