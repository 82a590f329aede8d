package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexRepository = (*IndexStore)(nil)

// documentEntry is a stored document with its generation counter.
type documentEntry struct {
	doc domain.Document
	seq int64
}

// embeddingKey is the (chunk, model) pair an embedding is unique on.
type embeddingKey struct {
	chunkID string
	model   string
}

// IndexStore is an in-memory implementation of driven.IndexRepository.
// It mirrors the SQLite adapter, including cascading deletes.
type IndexStore struct {
	mu         sync.RWMutex
	documents  map[string]*documentEntry // by file path
	paths      map[string]string         // document ID -> file path
	chunks     map[string]domain.Chunk
	embeddings map[string]domain.Embedding
	byChunk    map[embeddingKey]string // -> embedding ID
	now        func() time.Time
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		documents:  make(map[string]*documentEntry),
		paths:      make(map[string]string),
		chunks:     make(map[string]domain.Chunk),
		embeddings: make(map[string]domain.Embedding),
		byChunk:    make(map[embeddingKey]string),
		now:        time.Now,
	}
}

// UpsertDocument stores or updates a document keyed by file path.
func (s *IndexStore) UpsertDocument(_ context.Context, doc *domain.Document) (string, error) {
	if doc.FilePath == "" {
		return "", fmt.Errorf("%w: document file path is required", domain.ErrInvalidInput)
	}
	status := doc.EmbeddingStatus
	if status == "" {
		status = domain.EmbeddingStatusPending
	}
	if !status.IsValid() {
		return "", fmt.Errorf("%w: embedding status %q", domain.ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if entry, ok := s.documents[doc.FilePath]; ok {
		stored := *doc
		stored.ID = entry.doc.ID
		stored.Generation = entry.doc.Generation
		stored.CreatedAt = entry.doc.CreatedAt
		stored.UpdatedAt = now
		stored.EmbeddingStatus = status
		entry.doc = stored
		return stored.ID, nil
	}

	stored := *doc
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.EmbeddingStatus = status
	stored.Generation = 0
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.documents[stored.FilePath] = &documentEntry{doc: stored}
	s.paths[stored.ID] = stored.FilePath
	return stored.ID, nil
}

// GetDocument retrieves a document by file path. Returns nil, nil when absent.
func (s *IndexStore) GetDocument(_ context.Context, filePath string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.documents[filePath]
	if !ok {
		return nil, nil
	}
	doc := entry.doc
	return &doc, nil
}

// GetAllDocuments returns every document ordered by file path.
func (s *IndexStore) GetAllDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, entry := range s.documents {
		docs = append(docs, entry.doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FilePath < docs[j].FilePath })
	return docs, nil
}

// DeleteDocument removes a document with its chunks and embeddings.
func (s *IndexStore) DeleteDocument(_ context.Context, filePath string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.documents[filePath]
	if !ok {
		return false, nil
	}
	s.deleteChunksLocked(entry.doc.ID, func(domain.Chunk) bool { return true })
	delete(s.paths, entry.doc.ID)
	delete(s.documents, filePath)
	return true, nil
}

// AddChunk stores a chunk. The owning document must exist.
func (s *IndexStore) AddChunk(_ context.Context, chunk *domain.Chunk) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[chunk.DocumentID]; !ok {
		return "", fmt.Errorf("%w: document %s", domain.ErrNotFound, chunk.DocumentID)
	}
	stored := *chunk
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	s.chunks[stored.ID] = stored
	return stored.ID, nil
}

// GetChunks returns the active-generation chunks of a document.
func (s *IndexStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []domain.Chunk
	for _, c := range s.chunks {
		if s.isActiveLocked(c) && c.DocumentID == documentID {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
	return chunks, nil
}

// DeleteChunksForDocument removes all chunks of a document in every generation.
func (s *IndexStore) DeleteChunksForDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteChunksLocked(documentID, func(domain.Chunk) bool { return true })
	return nil
}

// AddEmbedding stores an embedding, replacing any vector for the same
// chunk and model. The chunk must exist.
func (s *IndexStore) AddEmbedding(_ context.Context, embedding *domain.Embedding) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[embedding.ChunkID]; !ok {
		return "", fmt.Errorf("%w: chunk %s", domain.ErrNotFound, embedding.ChunkID)
	}

	stored := *embedding
	stored.CreatedAt = s.now().UTC()
	key := embeddingKey{chunkID: stored.ChunkID, model: stored.EmbeddingModel}
	if id, ok := s.byChunk[key]; ok {
		stored.ID = id
	} else {
		if stored.ID == "" {
			stored.ID = uuid.New().String()
		}
		s.byChunk[key] = stored.ID
	}
	stored.Vector = append([]byte(nil), embedding.Vector...)
	s.embeddings[stored.ID] = stored
	return stored.ID, nil
}

// GetAllEmbeddings returns active-generation embeddings ordered by chunk ID.
func (s *IndexStore) GetAllEmbeddings(_ context.Context, model string) ([]domain.StoredEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.StoredEmbedding
	for _, e := range s.embeddings {
		if model != "" && e.EmbeddingModel != model {
			continue
		}
		c, ok := s.chunks[e.ChunkID]
		if !ok || !s.isActiveLocked(c) {
			continue
		}
		out = append(out, domain.StoredEmbedding{
			Embedding:  e,
			DocumentID: c.DocumentID,
			FilePath:   s.paths[c.DocumentID],
			Content:    c.Content,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkID < out[j].ChunkID })
	return out, nil
}

// BeginGeneration allocates the next generation number for a document.
func (s *IndexStore) BeginGeneration(_ context.Context, documentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.entryLocked(documentID)
	if err != nil {
		return 0, err
	}
	entry.seq++
	return entry.seq, nil
}

// ActivateGeneration swaps the document to doc.Generation.
func (s *IndexStore) ActivateGeneration(_ context.Context, doc *domain.Document) error {
	if !doc.EmbeddingStatus.IsValid() {
		return fmt.Errorf("%w: embedding status %q", domain.ErrInvalidInput, doc.EmbeddingStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.entryLocked(doc.ID)
	if err != nil {
		return err
	}

	gen, active := doc.Generation, entry.doc.Generation
	if gen <= 0 || gen > entry.seq {
		return fmt.Errorf("%w: generation %d was never allocated", domain.ErrInvalidInput, gen)
	}
	if gen <= active {
		if gen < active {
			s.deleteChunksLocked(doc.ID, func(c domain.Chunk) bool { return c.Generation == gen })
		}
		return fmt.Errorf("%w: generation %d, active %d", domain.ErrStaleGeneration, gen, active)
	}

	stored := &entry.doc
	stored.Generation = gen
	stored.Title = doc.Title
	stored.Content = doc.Content
	stored.ContentHash = doc.ContentHash
	stored.FileSize = doc.FileSize
	stored.LastModified = doc.LastModified
	stored.EmbeddingStatus = doc.EmbeddingStatus
	stored.EmbeddingModel = doc.EmbeddingModel
	stored.UpdatedAt = s.now().UTC()

	s.deleteChunksLocked(doc.ID, func(c domain.Chunk) bool { return c.Generation < gen })
	return nil
}

// Close is a no-op for the in-memory store.
func (s *IndexStore) Close() error {
	return nil
}

func (s *IndexStore) entryLocked(documentID string) (*documentEntry, error) {
	path, ok := s.paths[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	return s.documents[path], nil
}

func (s *IndexStore) isActiveLocked(c domain.Chunk) bool {
	path, ok := s.paths[c.DocumentID]
	if !ok {
		return false
	}
	return s.documents[path].doc.Generation == c.Generation
}

// deleteChunksLocked removes the document's chunks matching match and
// their embeddings.
func (s *IndexStore) deleteChunksLocked(documentID string, match func(domain.Chunk) bool) {
	removed := make(map[string]struct{})
	for id, c := range s.chunks {
		if c.DocumentID == documentID && match(c) {
			removed[id] = struct{}{}
			delete(s.chunks, id)
		}
	}
	for id, e := range s.embeddings {
		if _, ok := removed[e.ChunkID]; ok {
			delete(s.embeddings, id)
			delete(s.byChunk, embeddingKey{chunkID: e.ChunkID, model: e.EmbeddingModel})
		}
	}
}
