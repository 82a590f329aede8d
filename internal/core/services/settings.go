package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-notes/internal/logger"
)

// Ensure SettingsService implements both interfaces.
var (
	_ driving.SettingsService = (*SettingsService)(nil)
	_ driven.SettingsSource   = (*SettingsService)(nil)
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRAGEnabled        = "rag.enabled"
	keyChunkSize         = "rag.chunk_size"
	keyChunkOverlap      = "rag.chunk_overlap"
	keyEmbeddingConfigs  = "embedding.configs"
	keyRequestsPerSecond = "embedding.requests_per_second"
)

// Fields of one [[embedding.configs]] table.
const (
	fieldID       = "id"
	fieldName     = "name"
	fieldProvider = "provider"
	fieldAPIKey   = "api_key"
	fieldAPIURL   = "api_url"
	fieldModel    = "model_name"
)

// SettingsService manages RAG settings stored in a ConfigStore.
// It is also the SettingsSource injected into the indexing and search services.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case validation always succeeds.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// RAGSettings returns the current settings.
func (s *SettingsService) RAGSettings() (*domain.RAGSettings, error) {
	return s.Get()
}

// Get retrieves current settings, filling unset keys with defaults.
func (s *SettingsService) Get() (*domain.RAGSettings, error) {
	defaults := domain.DefaultRAGSettings()

	settings := &domain.RAGSettings{
		Enabled:           s.getBool(keyRAGEnabled, defaults.Enabled),
		ChunkSize:         s.getInt(keyChunkSize, defaults.ChunkSize),
		ChunkOverlap:      s.getInt(keyChunkOverlap, defaults.ChunkOverlap),
		RequestsPerSecond: s.configStore.GetFloat(keyRequestsPerSecond),
	}
	if settings.ChunkSize <= 0 {
		settings.ChunkSize = defaults.ChunkSize
	}
	if settings.ChunkOverlap < 0 {
		settings.ChunkOverlap = 0
	}

	for i, table := range s.configStore.GetTables(keyEmbeddingConfigs) {
		cfg := domain.EmbeddingConfig{
			ID:        tableString(table, fieldID),
			Name:      tableString(table, fieldName),
			Provider:  domain.AIProvider(tableString(table, fieldProvider)),
			APIKey:    tableString(table, fieldAPIKey),
			APIURL:    tableString(table, fieldAPIURL),
			ModelName: tableString(table, fieldModel),
		}
		if cfg.ID == "" || cfg.ModelName == "" {
			logger.Warn("Ignoring embedding config #%d: id and model_name are required", i+1)
			continue
		}
		settings.EmbeddingConfigs = append(settings.EmbeddingConfigs, cfg)
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.RAGSettings) error {
	if err := s.configStore.Set(keyRAGEnabled, settings.Enabled); err != nil {
		return fmt.Errorf("save rag enabled: %w", err)
	}
	if err := s.configStore.Set(keyChunkSize, settings.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlap, settings.ChunkOverlap); err != nil {
		return fmt.Errorf("save chunk overlap: %w", err)
	}
	if settings.RequestsPerSecond > 0 {
		if err := s.configStore.Set(keyRequestsPerSecond, settings.RequestsPerSecond); err != nil {
			return fmt.Errorf("save requests per second: %w", err)
		}
	}

	tables := make([]map[string]any, 0, len(settings.EmbeddingConfigs))
	for _, cfg := range settings.EmbeddingConfigs {
		tables = append(tables, configTable(cfg))
	}
	if err := s.configStore.Set(keyEmbeddingConfigs, tables); err != nil {
		return fmt.Errorf("save embedding configs: %w", err)
	}

	return nil
}

// SetEnabled switches RAG on or off.
func (s *SettingsService) SetEnabled(enabled bool) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Enabled = enabled
	return s.Save(settings)
}

// SetChunking updates chunk size and overlap.
// The overlap must be smaller than the chunk size.
func (s *SettingsService) SetChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrInvalidInput, size, overlap)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.ChunkSize = size
	settings.ChunkOverlap = overlap
	return s.Save(settings)
}

// AddEmbeddingConfig adds cfg, replacing an existing config with the same ID.
// An empty ID is generated; an empty model falls back to the provider default.
func (s *SettingsService) AddEmbeddingConfig(cfg domain.EmbeddingConfig) error {
	if cfg.Provider != "" && !cfg.Provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, cfg.Provider)
	}
	cfg.ID = strings.TrimSpace(cfg.ID)
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()[:8]
	}
	if cfg.ModelName == "" {
		cfg.ModelName = domain.DefaultEmbeddingModels()[cfg.EffectiveProvider()]
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ModelName
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	replaced := false
	for i := range settings.EmbeddingConfigs {
		if settings.EmbeddingConfigs[i].ID == cfg.ID {
			settings.EmbeddingConfigs[i] = cfg
			replaced = true
			break
		}
	}
	if !replaced {
		settings.EmbeddingConfigs = append(settings.EmbeddingConfigs, cfg)
	}

	return s.Save(settings)
}

// RemoveEmbeddingConfig deletes the config with the given ID.
func (s *SettingsService) RemoveEmbeddingConfig(id string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	kept := settings.EmbeddingConfigs[:0]
	for _, cfg := range settings.EmbeddingConfigs {
		if cfg.ID != id {
			kept = append(kept, cfg)
		}
	}
	if len(kept) == len(settings.EmbeddingConfigs) {
		return fmt.Errorf("%w: embedding config %s", domain.ErrNotFound, id)
	}
	settings.EmbeddingConfigs = kept

	return s.Save(settings)
}

// ValidateEmbeddingConfig pings the provider behind the config with the
// given ID, or the default config when id is empty.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context, id string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	// Validation works even while RAG is disabled.
	settings.Enabled = true
	cfg, err := settings.ResolveEmbeddingConfig(id)
	if err != nil {
		return err
	}
	if s.aiValidator == nil {
		return nil
	}
	return s.aiValidator.ValidateEmbedding(ctx, *cfg)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.RAGSettings {
	return domain.DefaultRAGSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func tableString(table map[string]any, field string) string {
	if v, ok := table[field].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func configTable(cfg domain.EmbeddingConfig) map[string]any {
	table := map[string]any{
		fieldID:    cfg.ID,
		fieldModel: cfg.ModelName,
	}
	if cfg.Name != "" {
		table[fieldName] = cfg.Name
	}
	if cfg.Provider != "" {
		table[fieldProvider] = cfg.Provider.String()
	}
	if cfg.APIKey != "" {
		table[fieldAPIKey] = cfg.APIKey
	}
	if cfg.APIURL != "" {
		table[fieldAPIURL] = cfg.APIURL
	}
	return table
}
