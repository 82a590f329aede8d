package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/notes"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

type fakeWatcher struct {
	added []string
}

func (w *fakeWatcher) Add(name string) error {
	w.added = append(w.added, name)
	return nil
}

type notesFixture struct {
	*indexingFixture
	dir   string
	notes *NotesService
}

func newNotesFixture(t *testing.T) *notesFixture {
	t.Helper()
	f := newIndexingFixture(t)
	return &notesFixture{
		indexingFixture: f,
		dir:             t.TempDir(),
		notes:           NewNotesService(f.service, notes.NewLoader()),
	}
}

func (f *notesFixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNotesService_IndexFile(t *testing.T) {
	f := newNotesFixture(t)
	path := f.write(t, "plan.md", "# Q3 Plan\n\nShip it.")

	res := f.notes.IndexFile(context.Background(), path, "")

	require.True(t, res.Success, res.Message)
	doc, err := f.service.GetDocument(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Q3 Plan", doc.Title)
	assert.Equal(t, int64(len("# Q3 Plan\n\nShip it.")), doc.FileSize)
	assert.NotZero(t, doc.LastModified)
}

func TestNotesService_IndexFile_Missing(t *testing.T) {
	f := newNotesFixture(t)
	res := f.notes.IndexFile(context.Background(), filepath.Join(f.dir, "gone.md"), "")

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrNotFound)
}

func TestNotesService_IndexTree(t *testing.T) {
	f := newNotesFixture(t)
	f.write(t, "a.md", "alpha")
	f.write(t, "sub/b.txt", "beta")
	f.write(t, "empty.md", "")
	f.write(t, "skip.png", "binary")
	f.write(t, ".trash/c.md", "hidden")

	var progress []string
	res := f.notes.IndexTree(context.Background(), f.dir, "", func(_, _ int, path string) {
		progress = append(progress, filepath.Base(path))
	})

	assert.Equal(t, driving.BatchResult{Success: 2, Failed: 1, Total: 3}, res)
	assert.Equal(t, []string{"a.md", "empty.md", "b.txt"}, progress)

	again := f.notes.IndexTree(context.Background(), f.dir, "", nil)
	assert.Equal(t, driving.BatchResult{Failed: 1, Skipped: 2, Total: 3}, again)
}

func TestNotesService_IndexTree_Cancelled(t *testing.T) {
	f := newNotesFixture(t)
	f.write(t, "a.md", "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.notes.IndexTree(ctx, f.dir, "", nil)

	assert.Equal(t, driving.BatchResult{}, res, "walk stops before any note is listed")
}

func TestNotesService_HandleEvent(t *testing.T) {
	f := newNotesFixture(t)
	ctx := context.Background()
	w := &fakeWatcher{}

	note := f.write(t, "n.md", "watched note")
	ev, ok := f.notes.handleEvent(ctx, w, fsnotify.Event{Name: note, Op: fsnotify.Create})
	require.True(t, ok)
	assert.Equal(t, note, ev.FilePath)
	assert.False(t, ev.Removed)
	assert.True(t, ev.Result.Success)

	other := f.write(t, "pic.png", "x")
	_, ok = f.notes.handleEvent(ctx, w, fsnotify.Event{Name: other, Op: fsnotify.Write})
	assert.False(t, ok)

	f.write(t, "newdir/inner/x.md", "x")
	require.NoError(t, os.MkdirAll(filepath.Join(f.dir, "newdir", ".hidden"), 0o755))
	_, ok = f.notes.handleEvent(ctx, w, fsnotify.Event{Name: filepath.Join(f.dir, "newdir"), Op: fsnotify.Create})
	assert.False(t, ok)
	assert.Equal(t, []string{filepath.Join(f.dir, "newdir"), filepath.Join(f.dir, "newdir", "inner")}, w.added)

	require.NoError(t, os.Remove(note))
	ev, ok = f.notes.handleEvent(ctx, w, fsnotify.Event{Name: note, Op: fsnotify.Remove})
	require.True(t, ok)
	assert.True(t, ev.Removed)
	_, err := f.service.GetDocument(ctx, note)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, ok = f.notes.handleEvent(ctx, w, fsnotify.Event{Name: note, Op: fsnotify.Rename})
	assert.False(t, ok, "already removed")
}

func TestNotesService_Watch(t *testing.T) {
	f := newNotesFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan driving.NoteEvent, 16)
	done := make(chan error, 1)
	go func() {
		done <- f.notes.Watch(ctx, f.dir, func(ev driving.NoteEvent) {
			select {
			case events <- ev:
			default:
			}
		})
	}()

	path := filepath.Join(f.dir, "live.md")
	deadline := time.After(5 * time.Second)
	written := false
	for indexed := false; !indexed; {
		if !written {
			// Give the watcher a moment to register the directory.
			time.Sleep(100 * time.Millisecond)
			require.NoError(t, os.WriteFile(path, []byte("live content"), 0o644))
			written = true
		}
		select {
		case ev := <-events:
			indexed = ev.FilePath == path && ev.Result.Success
		case <-deadline:
			t.Fatal("timed out waiting for watch event")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestNotesService_Watch_MissingDir(t *testing.T) {
	f := newNotesFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := f.notes.Watch(ctx, filepath.Join(f.dir, "does-not-exist"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, ctx.Err(), "watch should fail before the deadline")
}

func TestNotesService_Watch_NotADirectory(t *testing.T) {
	f := newNotesFixture(t)
	path := f.write(t, "note.md", "body")

	err := f.notes.Watch(context.Background(), path, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddTree_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))

	w := &fakeWatcher{}
	require.NoError(t, addTree(w, dir))
	assert.Equal(t, []string{dir, filepath.Join(dir, "sub")}, w.added)
}
