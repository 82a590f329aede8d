// Package storagetest holds the behavioural test suite shared by every
// driven.IndexRepository implementation.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
)

// Factory returns an empty repository. Cleanup is registered on t.
type Factory func(t *testing.T) driven.IndexRepository

// Run executes the suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, repo driven.IndexRepository)
	}{
		{"UpsertDocument_KeepsIDByFilePath", testUpsertKeepsID},
		{"UpsertDocument_RejectsInvalid", testUpsertRejectsInvalid},
		{"GetDocument_Missing", testGetDocumentMissing},
		{"GetAllDocuments_SortedByPath", testGetAllDocumentsSorted},
		{"DeleteDocument_Cascades", testDeleteDocumentCascades},
		{"AddEmbedding_ReplacesSameModel", testAddEmbeddingReplaces},
		{"GetAllEmbeddings_ModelFilter", testGetAllEmbeddingsModelFilter},
		{"DeleteChunksForDocument", testDeleteChunksForDocument},
		{"Generation_HiddenUntilActivated", testGenerationHiddenUntilActivated},
		{"Generation_ActivationReplacesOld", testGenerationActivationReplacesOld},
		{"Generation_StaleAttemptDiscarded", testGenerationStaleAttempt},
		{"Generation_UnknownDocument", testGenerationUnknownDocument},
		{"Generation_NeverAllocated", testGenerationNeverAllocated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

func upsert(t *testing.T, repo driven.IndexRepository, path string) string {
	t.Helper()
	id, err := repo.UpsertDocument(context.Background(), &domain.Document{
		FilePath:        path,
		Title:           "Title " + path,
		Content:         "content of " + path,
		ContentHash:     "hash-" + path,
		EmbeddingStatus: domain.EmbeddingStatusProcessing,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

// writeGeneration allocates a generation and stores n chunks with one
// embedding each under model.
func writeGeneration(t *testing.T, repo driven.IndexRepository, docID string, n int, model string) int64 {
	t.Helper()
	ctx := context.Background()

	gen, err := repo.BeginGeneration(ctx, docID)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		chunkID, err := repo.AddChunk(ctx, &domain.Chunk{
			DocumentID:    docID,
			Generation:    gen,
			ChunkIndex:    i,
			Content:       "chunk",
			StartPosition: i * 10,
			EndPosition:   i*10 + 10,
			TokenCount:    2,
		})
		require.NoError(t, err)

		_, err = repo.AddEmbedding(ctx, &domain.Embedding{
			ChunkID:        chunkID,
			Vector:         domain.EncodeVector([]float32{float32(gen), float32(i)}),
			EmbeddingModel: model,
		})
		require.NoError(t, err)
	}
	return gen
}

func activate(ctx context.Context, repo driven.IndexRepository, docID string, gen int64, model string) error {
	return repo.ActivateGeneration(ctx, &domain.Document{
		ID:              docID,
		Title:           "activated",
		Content:         "new content",
		ContentHash:     "new-hash",
		EmbeddingStatus: domain.EmbeddingStatusCompleted,
		EmbeddingModel:  model,
		Generation:      gen,
	})
}

func testUpsertKeepsID(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	first := upsert(t, repo, "/notes/a.md")

	second, err := repo.UpsertDocument(ctx, &domain.Document{
		FilePath:        "/notes/a.md",
		Title:           "Renamed",
		ContentHash:     "other",
		EmbeddingStatus: domain.EmbeddingStatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	doc, err := repo.GetDocument(ctx, "/notes/a.md")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Renamed", doc.Title)
	assert.Equal(t, "other", doc.ContentHash)
	assert.Equal(t, domain.EmbeddingStatusFailed, doc.EmbeddingStatus)
	assert.Equal(t, int64(0), doc.Generation)
	assert.False(t, doc.CreatedAt.IsZero())
}

func testUpsertRejectsInvalid(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()

	_, err := repo.UpsertDocument(ctx, &domain.Document{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = repo.UpsertDocument(ctx, &domain.Document{FilePath: "/x.md", EmbeddingStatus: "done"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func testGetDocumentMissing(t *testing.T, repo driven.IndexRepository) {
	doc, err := repo.GetDocument(context.Background(), "/missing.md")
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func testGetAllDocumentsSorted(t *testing.T, repo driven.IndexRepository) {
	upsert(t, repo, "/notes/b.md")
	upsert(t, repo, "/notes/a.md")

	docs, err := repo.GetAllDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "/notes/a.md", docs[0].FilePath)
	assert.Equal(t, "/notes/b.md", docs[1].FilePath)
	assert.Equal(t, "content of /notes/a.md", docs[0].Content)
}

func testDeleteDocumentCascades(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	id := upsert(t, repo, "/notes/a.md")
	gen := writeGeneration(t, repo, id, 2, "m")
	require.NoError(t, activate(ctx, repo, id, gen, "m"))

	removed, err := repo.DeleteDocument(ctx, "/notes/a.md")
	require.NoError(t, err)
	assert.True(t, removed)

	chunks, err := repo.GetChunks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	embeddings, err := repo.GetAllEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, embeddings)

	removed, err = repo.DeleteDocument(ctx, "/notes/a.md")
	require.NoError(t, err)
	assert.False(t, removed)
}

func testAddEmbeddingReplaces(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	id := upsert(t, repo, "/notes/a.md")
	gen, err := repo.BeginGeneration(ctx, id)
	require.NoError(t, err)

	chunkID, err := repo.AddChunk(ctx, &domain.Chunk{DocumentID: id, Generation: gen, Content: "c"})
	require.NoError(t, err)

	first, err := repo.AddEmbedding(ctx, &domain.Embedding{
		ChunkID: chunkID, Vector: domain.EncodeVector([]float32{1}), EmbeddingModel: "m",
	})
	require.NoError(t, err)
	second, err := repo.AddEmbedding(ctx, &domain.Embedding{
		ChunkID: chunkID, Vector: domain.EncodeVector([]float32{2}), EmbeddingModel: "m",
	})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, activate(ctx, repo, id, gen, "m"))
	embeddings, err := repo.GetAllEmbeddings(ctx, "m")
	require.NoError(t, err)
	require.Len(t, embeddings, 1)

	vec, err := domain.DecodeVector(embeddings[0].Vector)
	require.NoError(t, err)
	assert.Equal(t, []float32{2}, vec)
	assert.Equal(t, "/notes/a.md", embeddings[0].FilePath)
	assert.Equal(t, id, embeddings[0].DocumentID)
	assert.Equal(t, "c", embeddings[0].Content)
}

func testGetAllEmbeddingsModelFilter(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	a := upsert(t, repo, "/notes/a.md")
	b := upsert(t, repo, "/notes/b.md")
	require.NoError(t, activate(ctx, repo, a, writeGeneration(t, repo, a, 2, "small"), "small"))
	require.NoError(t, activate(ctx, repo, b, writeGeneration(t, repo, b, 3, "large"), "large"))

	small, err := repo.GetAllEmbeddings(ctx, "small")
	require.NoError(t, err)
	assert.Len(t, small, 2)
	for _, e := range small {
		assert.Equal(t, "small", e.EmbeddingModel)
	}

	all, err := repo.GetAllEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := repo.GetAllEmbeddings(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDeleteChunksForDocument(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	id := upsert(t, repo, "/notes/a.md")
	require.NoError(t, activate(ctx, repo, id, writeGeneration(t, repo, id, 3, "m"), "m"))

	require.NoError(t, repo.DeleteChunksForDocument(ctx, id))

	chunks, err := repo.GetChunks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	embeddings, err := repo.GetAllEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, embeddings)

	doc, err := repo.GetDocument(ctx, "/notes/a.md")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func testGenerationHiddenUntilActivated(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	id := upsert(t, repo, "/notes/a.md")
	gen := writeGeneration(t, repo, id, 2, "m")

	chunks, err := repo.GetChunks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	require.NoError(t, activate(ctx, repo, id, gen, "m"))

	chunks, err = repo.GetChunks(ctx, id)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
	assert.Equal(t, gen, chunks[0].Generation)

	doc, err := repo.GetDocument(ctx, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, gen, doc.Generation)
	assert.Equal(t, domain.EmbeddingStatusCompleted, doc.EmbeddingStatus)
	assert.Equal(t, "m", doc.EmbeddingModel)
	assert.Equal(t, "new-hash", doc.ContentHash)
	assert.Equal(t, "new content", doc.Content)
}

func testGenerationActivationReplacesOld(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	id := upsert(t, repo, "/notes/a.md")
	first := writeGeneration(t, repo, id, 3, "m")
	require.NoError(t, activate(ctx, repo, id, first, "m"))

	second := writeGeneration(t, repo, id, 1, "m")
	assert.Greater(t, second, first)
	require.NoError(t, activate(ctx, repo, id, second, "m"))

	chunks, err := repo.GetChunks(ctx, id)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, second, chunks[0].Generation)

	embeddings, err := repo.GetAllEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, embeddings, 1)
}

func testGenerationStaleAttempt(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	id := upsert(t, repo, "/notes/a.md")

	older := writeGeneration(t, repo, id, 2, "m")
	newer := writeGeneration(t, repo, id, 1, "m")
	require.NoError(t, activate(ctx, repo, id, newer, "m"))

	err := activate(ctx, repo, id, older, "m")
	assert.ErrorIs(t, err, domain.ErrStaleGeneration)

	chunks, err := repo.GetChunks(ctx, id)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, newer, chunks[0].Generation)

	embeddings, err := repo.GetAllEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, embeddings, 1)

	doc, err := repo.GetDocument(ctx, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, newer, doc.Generation)
}

func testGenerationUnknownDocument(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()

	_, err := repo.BeginGeneration(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = activate(ctx, repo, "missing", 1, "m")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testGenerationNeverAllocated(t *testing.T, repo driven.IndexRepository) {
	ctx := context.Background()
	id := upsert(t, repo, "/notes/a.md")

	err := activate(ctx, repo, id, 7, "m")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
