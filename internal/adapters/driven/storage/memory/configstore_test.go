package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("rag.chunk_size", 500))
	require.NoError(t, store.Set("rag.enabled", true))
	require.NoError(t, store.Set("embedding.requests_per_second", 1.5))
	require.NoError(t, store.Set("embedding.configs", []map[string]any{{"id": "a"}}))

	assert.Equal(t, 500, store.GetInt("rag.chunk_size"))
	assert.True(t, store.GetBool("rag.enabled"))
	assert.Equal(t, 1.5, store.GetFloat("embedding.requests_per_second"))
	assert.Len(t, store.GetTables("embedding.configs"), 1)
	assert.Equal(t, "", store.GetString("rag.chunk_size"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_NoOps(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
