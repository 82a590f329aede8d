package driven

import "github.com/custodia-labs/sercha-notes/internal/core/domain"

// SettingsSource provides the current RAG settings.
// Services receive it by injection and never reach for global state.
type SettingsSource interface {
	// RAGSettings returns a snapshot of the current settings.
	RAGSettings() (*domain.RAGSettings, error)
}
