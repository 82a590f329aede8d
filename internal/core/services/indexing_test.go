package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// threeParagraphs splits into three chunks at size 20 with no overlap.
const threeParagraphs = "aaaaaaaaaa\n\nbbbbbbbbbb\n\ncccccccccc"

type indexingFixture struct {
	repo     *memory.IndexStore
	embedder *mockEmbedder
	settings *stubSettings
	service  *IndexingService
}

func newIndexingFixture(t *testing.T) *indexingFixture {
	t.Helper()
	f := &indexingFixture{
		repo:     memory.NewIndexStore(),
		embedder: newMockEmbedder(),
		settings: testSettings(),
	}
	f.settings.settings.ChunkSize = 20
	f.settings.settings.ChunkOverlap = 0
	f.service = NewIndexingService(f.repo, f.embedder, f.settings)
	return f
}

func (f *indexingFixture) embed(path, content string) driving.EmbedResult {
	return f.service.EmbedDocument(context.Background(), driving.EmbedRequest{FilePath: path, Content: content})
}

func (f *indexingFixture) chunks(t *testing.T, path string) []domain.Chunk {
	t.Helper()
	doc, err := f.repo.GetDocument(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, doc)
	chunks, err := f.repo.GetChunks(context.Background(), doc.ID)
	require.NoError(t, err)
	return chunks
}

func TestEmbedDocument_IndexesAllChunks(t *testing.T) {
	f := newIndexingFixture(t)

	res := f.embed("/notes/letters.md", threeParagraphs)

	require.True(t, res.Success, res.Message)
	assert.NoError(t, res.Err)
	assert.NotEmpty(t, res.DocumentID)
	assert.Equal(t, 3, res.ChunksCount)
	assert.Equal(t, 3, res.EmbeddingsCount)

	doc, err := f.repo.GetDocument(context.Background(), "/notes/letters.md")
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingStatusCompleted, doc.EmbeddingStatus)
	assert.Equal(t, "model-a", doc.EmbeddingModel)
	assert.Equal(t, ContentHash(threeParagraphs), doc.ContentHash)
	assert.Equal(t, "letters", doc.Title)

	chunks := f.chunks(t, "/notes/letters.md")
	require.Len(t, chunks, 3)
	assert.Equal(t, "aaaaaaaaaa", chunks[0].Content)
	assert.Equal(t, "cccccccccc", chunks[2].Content)

	embeddings, err := f.repo.GetAllEmbeddings(context.Background(), "model-a")
	require.NoError(t, err)
	assert.Len(t, embeddings, 3)
	assert.Equal(t, []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}, f.embedder.calls)
}

func TestEmbedDocument_UsesGivenTitle(t *testing.T) {
	f := newIndexingFixture(t)
	res := f.service.EmbedDocument(context.Background(), driving.EmbedRequest{
		FilePath: "/n/x.md", Content: "body", Title: "  Custom  ", FileSize: 4, LastModified: 1700000000000,
	})
	require.True(t, res.Success)

	doc, err := f.service.GetDocument(context.Background(), "/n/x.md")
	require.NoError(t, err)
	assert.Equal(t, "Custom", doc.Title)
	assert.Equal(t, int64(4), doc.FileSize)
	assert.Equal(t, int64(1700000000000), doc.LastModified)
}

func TestEmbedDocument_SkipsUnchangedContent(t *testing.T) {
	f := newIndexingFixture(t)

	first := f.embed("/n/a.md", threeParagraphs)
	require.True(t, first.Success)
	calls := f.embedder.callCount()

	second := f.embed("/n/a.md", threeParagraphs)
	assert.True(t, second.Success)
	assert.Equal(t, "Document already indexed", second.Message)
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Zero(t, second.ChunksCount)
	assert.Equal(t, calls, f.embedder.callCount(), "no provider calls for unchanged content")
}

func TestEmbedDocument_ReindexesOnModelChange(t *testing.T) {
	f := newIndexingFixture(t)
	require.True(t, f.embed("/n/a.md", threeParagraphs).Success)

	f.settings.settings.EmbeddingConfigs[0].ModelName = "model-b"
	res := f.embed("/n/a.md", threeParagraphs)

	require.True(t, res.Success)
	assert.Equal(t, 3, res.EmbeddingsCount)
	doc, _ := f.repo.GetDocument(context.Background(), "/n/a.md")
	assert.Equal(t, "model-b", doc.EmbeddingModel)
}

func TestEmbedDocument_ContentChangeReplacesChunks(t *testing.T) {
	f := newIndexingFixture(t)
	first := f.embed("/n/a.md", threeParagraphs)
	require.True(t, first.Success)

	res := f.embed("/n/a.md", "only one paragraph")
	require.True(t, res.Success)
	assert.Equal(t, first.DocumentID, res.DocumentID, "file path keeps its document ID")

	chunks := f.chunks(t, "/n/a.md")
	require.Len(t, chunks, 1)
	assert.Equal(t, "only one paragraph", chunks[0].Content)

	embeddings, err := f.repo.GetAllEmbeddings(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, embeddings, 1)
}

func TestEmbedDocument_EmptyContent(t *testing.T) {
	f := newIndexingFixture(t)
	require.True(t, f.embed("/n/a.md", threeParagraphs).Success)

	res := f.embed("/n/a.md", "  \n\n \t\n\n")

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrEmptyContent)
	assert.Zero(t, res.ChunksCount)
	assert.Empty(t, f.chunks(t, "/n/a.md"))

	doc, _ := f.repo.GetDocument(context.Background(), "/n/a.md")
	assert.Equal(t, domain.EmbeddingStatusFailed, doc.EmbeddingStatus)
}

func TestEmbedDocument_PartialFailure(t *testing.T) {
	f := newIndexingFixture(t)
	f.embedder.failOn = []string{"bbb"}

	res := f.embed("/n/a.md", threeParagraphs)

	require.True(t, res.Success)
	assert.Equal(t, 3, res.ChunksCount)
	assert.Equal(t, 2, res.EmbeddingsCount)
	assert.Len(t, f.chunks(t, "/n/a.md"), 3, "a failed chunk is still stored")

	doc, _ := f.repo.GetDocument(context.Background(), "/n/a.md")
	assert.Equal(t, domain.EmbeddingStatusCompleted, doc.EmbeddingStatus)
}

func TestEmbedDocument_AllChunksFail(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *mockEmbedder)
	}{
		{"provider error", func(m *mockEmbedder) { m.err = errors.New("503") }},
		{"empty vectors", func(m *mockEmbedder) { m.defaultVec = []float32{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIndexingFixture(t)
			tt.setup(f.embedder)

			res := f.embed("/n/a.md", threeParagraphs)

			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, domain.ErrEmbeddingProvider)
			assert.Equal(t, 3, res.ChunksCount)
			assert.Zero(t, res.EmbeddingsCount)

			doc, _ := f.repo.GetDocument(context.Background(), "/n/a.md")
			assert.Equal(t, domain.EmbeddingStatusFailed, doc.EmbeddingStatus)
		})
	}
}

func TestEmbedDocument_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *stubSettings)
		cfgID  string
		want   error
	}{
		{"disabled", func(s *stubSettings) { s.settings.Enabled = false }, "", domain.ErrRAGDisabled},
		{"no configs", func(s *stubSettings) { s.settings.EmbeddingConfigs = nil }, "", domain.ErrNoEmbeddingConfig},
		{"unknown id", func(*stubSettings) {}, "missing", domain.ErrUnknownEmbeddingConfig},
		{"settings unreadable", func(s *stubSettings) { s.err = errors.New("corrupt file") }, "", domain.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIndexingFixture(t)
			tt.mutate(f.settings)

			res := f.service.EmbedDocument(context.Background(), driving.EmbedRequest{
				FilePath: "/n/a.md", Content: threeParagraphs, EmbeddingConfigID: tt.cfgID,
			})

			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, tt.want)
			assert.ErrorIs(t, res.Err, domain.ErrConfiguration)
			assert.Zero(t, f.embedder.callCount())

			docs, err := f.repo.GetAllDocuments(context.Background())
			require.NoError(t, err)
			assert.Empty(t, docs, "nothing is written before configuration is resolved")
		})
	}
}

func TestEmbedDocument_SelectsConfigByID(t *testing.T) {
	f := newIndexingFixture(t)
	f.settings.settings.EmbeddingConfigs = append(f.settings.settings.EmbeddingConfigs,
		domain.EmbeddingConfig{ID: "large", ModelName: "model-large"})

	res := f.service.EmbedDocument(context.Background(), driving.EmbedRequest{
		FilePath: "/n/a.md", Content: "hello", EmbeddingConfigID: "large",
	})
	require.True(t, res.Success)
	assert.Equal(t, "large", f.embedder.configs[0].ID)

	doc, _ := f.repo.GetDocument(context.Background(), "/n/a.md")
	assert.Equal(t, "model-large", doc.EmbeddingModel)
}

func TestEmbedDocument_LaterAttemptWins(t *testing.T) {
	f := newIndexingFixture(t)

	var inner driving.EmbedResult
	fired := false
	f.embedder.onEmbed = func(string) {
		if fired {
			return
		}
		fired = true
		inner = f.embed("/n/a.md", "newer content")
	}

	outer := f.embed("/n/a.md", threeParagraphs)

	require.True(t, inner.Success, inner.Message)
	assert.False(t, outer.Success)
	assert.ErrorIs(t, outer.Err, domain.ErrStaleGeneration)
	assert.Equal(t, "Superseded by a newer indexing run", outer.Message)

	chunks := f.chunks(t, "/n/a.md")
	require.Len(t, chunks, 1)
	assert.Equal(t, "newer content", chunks[0].Content)

	doc, _ := f.repo.GetDocument(context.Background(), "/n/a.md")
	assert.Equal(t, ContentHash("newer content"), doc.ContentHash)
	assert.Equal(t, domain.EmbeddingStatusCompleted, doc.EmbeddingStatus)

	embeddings, err := f.repo.GetAllEmbeddings(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, embeddings, 1)
}

func TestEmbedAllDocuments(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()

	require.True(t, f.embed("/n/done.md", "already indexed").Success)
	_, err := f.repo.UpsertDocument(ctx, &domain.Document{FilePath: "/n/pending.md", Content: "needs work"})
	require.NoError(t, err)
	_, err = f.repo.UpsertDocument(ctx, &domain.Document{FilePath: "/n/empty.md", Content: "   "})
	require.NoError(t, err)

	var seen []string
	res := f.service.EmbedAllDocuments(ctx, func(index, total int, path string) {
		assert.Equal(t, len(seen)+1, index)
		assert.Equal(t, 3, total)
		seen = append(seen, path)
	})

	assert.Equal(t, driving.BatchResult{Success: 1, Failed: 1, Skipped: 1, Total: 3}, res)
	assert.Equal(t, []string{"/n/done.md", "/n/empty.md", "/n/pending.md"}, seen)

	doc, _ := f.repo.GetDocument(ctx, "/n/pending.md")
	assert.Equal(t, domain.EmbeddingStatusCompleted, doc.EmbeddingStatus)
}

func TestEmbedAllDocuments_ModelChangeIsNotSkipped(t *testing.T) {
	f := newIndexingFixture(t)
	require.True(t, f.embed("/n/a.md", "text").Success)

	f.settings.settings.EmbeddingConfigs[0].ModelName = "model-b"
	res := f.service.EmbedAllDocuments(context.Background(), nil)

	assert.Equal(t, driving.BatchResult{Success: 1, Total: 1}, res)
}

func TestEmbedAllDocuments_Cancelled(t *testing.T) {
	f := newIndexingFixture(t)
	for _, p := range []string{"/n/a.md", "/n/b.md"} {
		_, err := f.repo.UpsertDocument(context.Background(), &domain.Document{FilePath: p, Content: "x"})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.service.EmbedAllDocuments(ctx, func(int, int, string) {
		t.Fatal("no document should be visited")
	})

	assert.Equal(t, driving.BatchResult{Failed: 2, Total: 2}, res)
	assert.Equal(t, res.Total, res.Success+res.Failed+res.Skipped)
}

func TestEmbedAllDocuments_ListFailure(t *testing.T) {
	f := newIndexingFixture(t)
	svc := NewIndexingService(&failingRepo{IndexRepository: f.repo, listErr: errors.New("disk")}, f.embedder, f.settings)

	assert.Equal(t, driving.BatchResult{}, svc.EmbedAllDocuments(context.Background(), nil))
}

func TestResetDocument(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	require.True(t, f.embed("/n/a.md", threeParagraphs).Success)

	require.NoError(t, f.service.ResetDocument(ctx, "/n/a.md"))

	doc, err := f.service.GetDocument(ctx, "/n/a.md")
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingStatusPending, doc.EmbeddingStatus)
	assert.Empty(t, f.chunks(t, "/n/a.md"))

	res := f.service.EmbedAllDocuments(ctx, nil)
	assert.Equal(t, driving.BatchResult{Success: 1, Total: 1}, res)
	assert.Len(t, f.chunks(t, "/n/a.md"), 3)

	assert.ErrorIs(t, f.service.ResetDocument(ctx, "/n/missing.md"), domain.ErrNotFound)
}

func TestDocumentManagement(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	require.True(t, f.embed("/n/b.md", "b").Success)
	require.True(t, f.embed("/n/a.md", "a").Success)

	docs, err := f.service.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "/n/a.md", docs[0].FilePath)

	_, err = f.service.GetDocument(ctx, "/n/zzz.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	removed, err := f.service.RemoveDocument(ctx, "/n/a.md")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.service.RemoveDocument(ctx, "/n/a.md")
	require.NoError(t, err)
	assert.False(t, removed)

	embeddings, err := f.repo.GetAllEmbeddings(ctx, "")
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, "/n/b.md", embeddings[0].FilePath)
}
