package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
)

// mockEmbedder returns vectors keyed by text, falling back to defaultVec.
// Texts containing any string in failOn return an error.
type mockEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	defaultVec []float32
	failOn     []string
	err        error
	calls      []string
	configs    []domain.EmbeddingConfig

	// onEmbed runs before each call returns, outside the lock.
	onEmbed func(text string)
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors:    make(map[string][]float32),
		defaultVec: []float32{1, 0, 0},
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string, cfg domain.EmbeddingConfig) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.configs = append(m.configs, cfg)
	hook := m.onEmbed
	vec, ok := m.vectors[text]
	if !ok {
		vec = m.defaultVec
	}
	err := m.err
	for _, s := range m.failOn {
		if strings.Contains(text, s) {
			err = errors.New("provider rejected input")
		}
	}
	m.mu.Unlock()

	if hook != nil {
		hook(text)
	}
	if err != nil {
		return nil, err
	}
	return vec, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// stubSettings is a fixed SettingsSource.
type stubSettings struct {
	settings *domain.RAGSettings
	err      error
}

func (s *stubSettings) RAGSettings() (*domain.RAGSettings, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.settings
	cp.EmbeddingConfigs = append([]domain.EmbeddingConfig(nil), s.settings.EmbeddingConfigs...)
	return &cp, nil
}

func testSettings(configs ...domain.EmbeddingConfig) *stubSettings {
	if len(configs) == 0 {
		configs = []domain.EmbeddingConfig{{ID: "default", Provider: domain.AIProviderOllama, ModelName: "model-a"}}
	}
	settings := domain.DefaultRAGSettings()
	settings.EmbeddingConfigs = configs
	return &stubSettings{settings: &settings}
}

// failingRepo wraps a repository and fails selected reads.
type failingRepo struct {
	driven.IndexRepository
	listErr       error
	chunksErr     error
	embeddingsErr error
}

func (r *failingRepo) GetAllDocuments(ctx context.Context) ([]domain.Document, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.IndexRepository.GetAllDocuments(ctx)
}

func (r *failingRepo) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if r.chunksErr != nil {
		return nil, r.chunksErr
	}
	return r.IndexRepository.GetChunks(ctx, documentID)
}

func (r *failingRepo) GetAllEmbeddings(ctx context.Context, model string) ([]domain.StoredEmbedding, error) {
	if r.embeddingsErr != nil {
		return nil, r.embeddingsErr
	}
	return r.IndexRepository.GetAllEmbeddings(ctx, model)
}

// mockValidator records the configs it is asked to validate.
type mockValidator struct {
	err     error
	checked []domain.EmbeddingConfig
}

func (v *mockValidator) ValidateEmbedding(_ context.Context, cfg domain.EmbeddingConfig) error {
	v.checked = append(v.checked, cfg)
	return v.err
}
