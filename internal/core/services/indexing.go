package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-notes/internal/logger"
	"github.com/custodia-labs/sercha-notes/internal/postprocessors/chunker"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// IndexingService chunks notes, embeds the chunks and persists both.
// Chunks of one document and documents of one batch are processed
// sequentially, so at most one embedding request is in flight per call.
type IndexingService struct {
	repo     driven.IndexRepository
	embedder driven.EmbeddingClient
	settings driven.SettingsSource
}

// NewIndexingService creates a new indexing service.
func NewIndexingService(
	repo driven.IndexRepository,
	embedder driven.EmbeddingClient,
	settings driven.SettingsSource,
) *IndexingService {
	return &IndexingService{
		repo:     repo,
		embedder: embedder,
		settings: settings,
	}
}

// EmbedDocument indexes a single note.
//
// Each call writes its chunks under a fresh generation and activates it
// last. When two calls race on the same file path the one that began
// later wins; the other reports that it was superseded.
func (s *IndexingService) EmbedDocument(ctx context.Context, req driving.EmbedRequest) driving.EmbedResult {
	logger.Section("Indexing " + req.FilePath)

	settings, err := s.settings.RAGSettings()
	if err != nil {
		return failure(fmt.Errorf("%w: %w", domain.ErrConfiguration, err))
	}
	cfg, err := settings.ResolveEmbeddingConfig(req.EmbeddingConfigID)
	if err != nil {
		return failure(err)
	}

	hash := ContentHash(req.Content)
	existing, err := s.repo.GetDocument(ctx, req.FilePath)
	if err != nil {
		return failure(fmt.Errorf("load document: %w", err))
	}
	if isUpToDate(existing, hash, cfg.ModelName) {
		logger.Debug("Unchanged since last index, skipping")
		return driving.EmbedResult{
			Success:    true,
			Message:    "Document already indexed",
			DocumentID: existing.ID,
		}
	}

	doc := &domain.Document{
		FilePath:        req.FilePath,
		Title:           titleFor(req),
		Content:         req.Content,
		ContentHash:     hash,
		FileSize:        req.FileSize,
		LastModified:    req.LastModified,
		EmbeddingStatus: domain.EmbeddingStatusProcessing,
		EmbeddingModel:  cfg.ModelName,
	}
	docID, err := s.repo.UpsertDocument(ctx, doc)
	if err != nil {
		return failure(fmt.Errorf("save document: %w", err))
	}
	doc.ID = docID

	gen, err := s.repo.BeginGeneration(ctx, docID)
	if err != nil {
		return failureFor(docID, fmt.Errorf("begin generation: %w", err))
	}
	doc.Generation = gen

	chunks := chunker.New(
		chunker.WithChunkSize(settings.ChunkSize),
		chunker.WithOverlap(settings.ChunkOverlap),
	).Split(req.Content)
	logger.Debug("Split into %d chunks (size=%d, overlap=%d, generation=%d)",
		len(chunks), settings.ChunkSize, settings.ChunkOverlap, gen)

	if len(chunks) == 0 {
		doc.EmbeddingStatus = domain.EmbeddingStatusFailed
		if err := s.repo.ActivateGeneration(ctx, doc); err != nil {
			return s.activationFailure(doc, err, 0, 0)
		}
		logger.Info("%s: no content to index", req.FilePath)
		return driving.EmbedResult{
			Message:    "Document has no content to index",
			DocumentID: docID,
			Err:        domain.ErrEmptyContent,
		}
	}

	embedded := s.embedChunks(ctx, doc, chunks, *cfg)

	doc.EmbeddingStatus = domain.EmbeddingStatusFailed
	if embedded > 0 {
		doc.EmbeddingStatus = domain.EmbeddingStatusCompleted
	}
	if err := s.repo.ActivateGeneration(ctx, doc); err != nil {
		return s.activationFailure(doc, err, len(chunks), embedded)
	}

	logger.Info("%s: embedded %d/%d chunks with %s", req.FilePath, embedded, len(chunks), cfg.ModelName)
	if embedded == 0 {
		return driving.EmbedResult{
			Message:     fmt.Sprintf("Failed to embed any of %d chunks", len(chunks)),
			DocumentID:  docID,
			ChunksCount: len(chunks),
			Err:         domain.ErrEmbeddingProvider,
		}
	}
	return driving.EmbedResult{
		Success:         true,
		Message:         fmt.Sprintf("Embedded %d of %d chunks", embedded, len(chunks)),
		DocumentID:      docID,
		ChunksCount:     len(chunks),
		EmbeddingsCount: embedded,
	}
}

// embedChunks persists and embeds each chunk in order and returns the
// number of chunks whose embedding was stored. A failing chunk is logged
// and skipped.
func (s *IndexingService) embedChunks(
	ctx context.Context, doc *domain.Document, chunks []domain.Chunk, cfg domain.EmbeddingConfig,
) int {
	embedded := 0
	for i := range chunks {
		if ctx.Err() != nil {
			logger.Warn("Cancelled after %d of %d chunks", i, len(chunks))
			break
		}

		chunk := chunks[i]
		chunk.DocumentID = doc.ID
		chunk.Generation = doc.Generation

		chunkID, err := s.repo.AddChunk(ctx, &chunk)
		if err != nil {
			logger.Warn("Chunk %d: save failed: %v", chunk.ChunkIndex, err)
			continue
		}

		vec, err := s.embedder.Embed(ctx, chunk.Content, cfg)
		if err == nil && len(vec) == 0 {
			err = errors.New("empty vector")
		}
		if err != nil {
			logger.Warn("Chunk %d: %v", chunk.ChunkIndex, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err))
			continue
		}

		_, err = s.repo.AddEmbedding(ctx, &domain.Embedding{
			ChunkID:        chunkID,
			Vector:         domain.EncodeVector(vec),
			EmbeddingModel: cfg.ModelName,
		})
		if err != nil {
			logger.Warn("Chunk %d: save embedding failed: %v", chunk.ChunkIndex, err)
			continue
		}
		embedded++
	}
	return embedded
}

func (s *IndexingService) activationFailure(doc *domain.Document, err error, chunks, embedded int) driving.EmbedResult {
	if errors.Is(err, domain.ErrStaleGeneration) {
		logger.Info("%s: generation %d superseded by a newer run", doc.FilePath, doc.Generation)
		return driving.EmbedResult{
			Message:     "Superseded by a newer indexing run",
			DocumentID:  doc.ID,
			ChunksCount: chunks,
			Err:         err,
		}
	}
	logger.Warn("%s: activate generation %d: %v", doc.FilePath, doc.Generation, err)
	return driving.EmbedResult{
		Message:         fmt.Sprintf("Failed to save indexing result: %v", err),
		DocumentID:      doc.ID,
		ChunksCount:     chunks,
		EmbeddingsCount: embedded,
		Err:             err,
	}
}

// EmbedAllDocuments re-indexes every known document from its stored content.
// Documents already completed with the default model are skipped. If ctx
// is cancelled, documents not yet visited are counted as failed.
func (s *IndexingService) EmbedAllDocuments(ctx context.Context, onProgress driving.ProgressFunc) driving.BatchResult {
	logger.Section("Re-index")

	docs, err := s.repo.GetAllDocuments(ctx)
	if err != nil {
		logger.Warn("List documents: %v", err)
		return driving.BatchResult{}
	}

	model := ""
	if settings, err := s.settings.RAGSettings(); err == nil {
		model = settings.DefaultModel()
	}

	result := driving.BatchResult{Total: len(docs)}
	for i := range docs {
		doc := &docs[i]
		if ctx.Err() != nil {
			result.Failed += len(docs) - i
			logger.Warn("Re-index cancelled with %d documents remaining", len(docs)-i)
			break
		}
		if onProgress != nil {
			onProgress(i+1, len(docs), doc.FilePath)
		}

		if doc.EmbeddingStatus == domain.EmbeddingStatusCompleted && doc.EmbeddingModel == model {
			result.Skipped++
			continue
		}

		res := s.EmbedDocument(ctx, driving.EmbedRequest{
			FilePath:     doc.FilePath,
			Content:      doc.Content,
			Title:        doc.Title,
			FileSize:     doc.FileSize,
			LastModified: doc.LastModified,
		})
		if res.Success {
			result.Success++
		} else {
			result.Failed++
		}
	}

	logger.Info("Re-index: %d succeeded, %d failed, %d skipped of %d",
		result.Success, result.Failed, result.Skipped, result.Total)
	return result
}

// ResetDocument drops the chunks and embeddings of a document and marks it
// pending.
func (s *IndexingService) ResetDocument(ctx context.Context, filePath string) error {
	doc, err := s.GetDocument(ctx, filePath)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteChunksForDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	doc.EmbeddingStatus = domain.EmbeddingStatusPending
	if _, err := s.repo.UpsertDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// RemoveDocument deletes a document with its chunks and embeddings.
func (s *IndexingService) RemoveDocument(ctx context.Context, filePath string) (bool, error) {
	removed, err := s.repo.DeleteDocument(ctx, filePath)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return removed, nil
}

// ListDocuments returns every known document.
func (s *IndexingService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.repo.GetAllDocuments(ctx)
}

// GetDocument returns the document for filePath.
func (s *IndexingService) GetDocument(ctx context.Context, filePath string) (*domain.Document, error) {
	doc, err := s.repo.GetDocument(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, filePath)
	}
	return doc, nil
}

// isUpToDate reports whether doc was completed from the same content
// with the same model.
func isUpToDate(doc *domain.Document, hash, model string) bool {
	return doc != nil &&
		doc.ContentHash == hash &&
		doc.EmbeddingStatus == domain.EmbeddingStatusCompleted &&
		doc.EmbeddingModel == model
}

func titleFor(req driving.EmbedRequest) string {
	if t := strings.TrimSpace(req.Title); t != "" {
		return t
	}
	base := filepath.Base(req.FilePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func failure(err error) driving.EmbedResult {
	logger.Warn("Indexing failed: %v", err)
	return driving.EmbedResult{Message: err.Error(), Err: err}
}

func failureFor(docID string, err error) driving.EmbedResult {
	res := failure(err)
	res.DocumentID = docID
	return res
}
