package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

func indexedNote(t *testing.T) (*testEnv, string) {
	t.Helper()
	env := setupTestServices(t)
	path := env.writeNote(t, "plan.md", "# Plan\n\nShip it on Friday.")
	_, err := execute(t, "index", path)
	require.NoError(t, err)
	return env, path
}

func TestDocumentList(t *testing.T) {
	_, path := indexedNote(t)

	out, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, path)
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocumentList_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed.")
}

func TestDocumentGet(t *testing.T) {
	_, path := indexedNote(t)

	out, err := execute(t, "document", "get", "--content", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Document: "+path)
	assert.Contains(t, out, "Status:     completed")
	assert.Contains(t, out, "Model:      letters")
	assert.Contains(t, out, "Ship it on Friday.")
}

func TestDocumentGet_YAML(t *testing.T) {
	_, path := indexedNote(t)

	out, err := execute(t, "document", "get", "-o", "yaml", path)

	require.NoError(t, err)
	var doc domain.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, path, doc.FilePath)
	assert.Equal(t, domain.EmbeddingStatusCompleted, doc.EmbeddingStatus)
	assert.Empty(t, doc.Content, "content is not serialised")
}

func TestDocumentGet_NotFound(t *testing.T) {
	env := setupTestServices(t)
	missing := filepath.Join(env.dir, "nope.md")

	_, err := execute(t, "document", "get", missing)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found: "+missing)
}

func TestDocumentReset(t *testing.T) {
	env, path := indexedNote(t)

	out, err := execute(t, "document", "reset", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Reset: "+path)
	doc, err := env.indexing.GetDocument(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingStatusPending, doc.EmbeddingStatus)

	_, err = execute(t, "document", "reset", filepath.Join(env.dir, "nope.md"))
	assert.Error(t, err)
}

func TestDocumentRemove(t *testing.T) {
	env, path := indexedNote(t)

	out, err := execute(t, "document", "remove", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Removed: "+path)

	_, err = execute(t, "document", "remove", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")

	docs, err := env.indexing.ListDocuments(t.Context())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
