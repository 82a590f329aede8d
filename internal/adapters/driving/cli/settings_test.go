package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Short key", "abc123", "****"},
		{"Exactly 8 chars", "12345678", "****"},
		{"Long key", "sk-1234567890abcdef", "sk-1...cdef"},
		{"Very long key", "sk-proj-1234567890abcdefghijklmnop", "sk-p...mnop"},
		{"Empty key", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestSettingsShow(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Enabled:       true")
	assert.Contains(t, out, "Chunk size:    1000")
	assert.Contains(t, out, "Chunk overlap: 200")
	assert.Contains(t, out, "Rate limit:    unlimited")
	assert.Contains(t, out, "* local")
	assert.Contains(t, out, "provider: ollama  model: letters")
}

func TestSettingsEnableDisable(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings", "disable")
	require.NoError(t, err)
	assert.Contains(t, out, "RAG disabled.")
	s, err := env.settings.Get()
	require.NoError(t, err)
	assert.False(t, s.Enabled)

	_, err = execute(t, "settings", "enable")
	require.NoError(t, err)
	s, err = env.settings.Get()
	require.NoError(t, err)
	assert.True(t, s.Enabled)
}

func TestSettingsChunking(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings", "chunking", "500", "50")

	require.NoError(t, err)
	assert.Contains(t, out, "Chunking set to 500 characters with 50 overlap.")
	s, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, 500, s.ChunkSize)
	assert.Equal(t, 50, s.ChunkOverlap)
}

func TestSettingsChunking_Invalid(t *testing.T) {
	setupTestServices(t)

	tests := [][]string{
		{"abc", "10"},
		{"100", "xyz"},
		{"100", "100"},
	}
	for _, args := range tests {
		_, err := execute(t, append([]string{"settings", "chunking"}, args...)...)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%v", args)
	}
}

func TestEmbeddingAdd_WithFlags(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings", "embedding", "add",
		"--id", "cloud", "--provider", "openai", "--api-key", "sk-1234567890abcdef", "--model", "text-embedding-3-large")

	require.NoError(t, err)
	assert.Contains(t, out, "Saved embedding config cloud (openai, text-embedding-3-large).")
	s, err := env.settings.Get()
	require.NoError(t, err)
	require.Len(t, s.EmbeddingConfigs, 2)
	assert.Equal(t, "sk-1234567890abcdef", s.EmbeddingConfigs[1].APIKey)

	out, err = execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "api key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestEmbeddingAdd_PromptsForKey(t *testing.T) {
	env := setupTestServices(t)
	prompted := false
	passwordReader = func() string {
		prompted = true
		return "sk-prompted-key-0000"
	}
	defer func() { passwordReader = readPassword }()

	out, err := execute(t, "settings", "embedding", "add", "--provider", "openai")

	require.NoError(t, err)
	assert.True(t, prompted)
	assert.Contains(t, out, "API key (empty to use OPENAI_API_KEY)")
	s, err := env.settings.Get()
	require.NoError(t, err)
	added := s.EmbeddingConfigs[len(s.EmbeddingConfigs)-1]
	assert.Equal(t, "sk-prompted-key-0000", added.APIKey)
	assert.Equal(t, "text-embedding-3-small", added.ModelName)
	assert.Len(t, added.ID, 8)
}

func TestEmbeddingAdd_OllamaNeedsNoKey(t *testing.T) {
	setupTestServices(t)
	passwordReader = func() string {
		t.Fatal("ollama must not prompt for a key")
		return ""
	}
	defer func() { passwordReader = readPassword }()

	_, err := execute(t, "settings", "embedding", "add", "--id", "local", "--provider", "ollama", "--model", "mxbai")

	assert.NoError(t, err)
}

func TestEmbeddingAdd_InvalidProvider(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "settings", "embedding", "add", "--provider", "cohere")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmbeddingRemove(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings", "embedding", "remove", "local")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed embedding config local.")
	s, err := env.settings.Get()
	require.NoError(t, err)
	assert.Empty(t, s.EmbeddingConfigs)

	out, err = execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No embedding configs.")
}

func TestEmbeddingTest(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings", "embedding", "test")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ default config is reachable.")
}

func TestEmbeddingTest_Unreachable(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "settings", "embedding", "test", "local")

	require.Error(t, err)
	assert.ErrorIs(t, err, errProviderDown)
}
