package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
)

// dbFileName is the database file inside the data directory.
const dbFileName = "index.db"

// Store is the SQLite-backed index repository.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ driven.IndexRepository = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-notes/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-notes", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// Pragmas in the DSN apply to every pooled connection. Immediate
	// transactions take the write lock up front so read-then-write
	// transactions wait on busy_timeout instead of failing.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Documents ====================

const documentColumns = `id, file_path, title, content, content_hash, file_size, last_modified,
	embedding_status, embedding_model, generation, created_at, updated_at`

// UpsertDocument stores or updates a document keyed by file path.
func (s *Store) UpsertDocument(ctx context.Context, doc *domain.Document) (string, error) {
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

	id := doc.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := s.now().UTC()

	var storedID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, file_path, title, content, content_hash, file_size, last_modified,
			embedding_status, embedding_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			content_hash = excluded.content_hash,
			file_size = excluded.file_size,
			last_modified = excluded.last_modified,
			embedding_status = excluded.embedding_status,
			embedding_model = excluded.embedding_model,
			updated_at = excluded.updated_at
		RETURNING id
	`, id, doc.FilePath, doc.Title, doc.Content, doc.ContentHash, doc.FileSize, doc.LastModified,
		status.String(), doc.EmbeddingModel, now, now).Scan(&storedID)
	if err != nil {
		return "", fmt.Errorf("saving document: %w", err)
	}
	return storedID, nil
}

// GetDocument retrieves a document by file path. Returns nil, nil when absent.
func (s *Store) GetDocument(ctx context.Context, filePath string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE file_path = ?", filePath)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

// GetAllDocuments returns every document ordered by file path.
func (s *Store) GetAllDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY file_path")
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document; chunks and embeddings cascade.
func (s *Store) DeleteDocument(ctx context.Context, filePath string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE file_path = ?", filePath)
	if err != nil {
		return false, fmt.Errorf("deleting document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

// ==================== Chunks ====================

// AddChunk stores a chunk under its generation.
func (s *Store) AddChunk(ctx context.Context, chunk *domain.Chunk) (string, error) {
	id := chunk.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (id, document_id, generation, chunk_index, content,
			start_position, end_position, token_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, chunk.DocumentID, chunk.Generation, chunk.ChunkIndex, chunk.Content,
		chunk.StartPosition, chunk.EndPosition, chunk.TokenCount)
	if err != nil {
		return "", fmt.Errorf("saving chunk: %w", err)
	}
	return id, nil
}

// GetChunks returns the active-generation chunks of a document.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.generation, c.chunk_index, c.content,
			c.start_position, c.end_position, c.token_count
		FROM chunks c
		JOIN documents d ON d.id = c.document_id AND d.generation = c.generation
		WHERE c.document_id = ?
		ORDER BY c.chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Generation, &c.ChunkIndex, &c.Content,
			&c.StartPosition, &c.EndPosition, &c.TokenCount); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// DeleteChunksForDocument removes all chunks of a document in every generation.
func (s *Store) DeleteChunksForDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// ==================== Embeddings ====================

// AddEmbedding stores an embedding, replacing any vector for the same
// chunk and model.
func (s *Store) AddEmbedding(ctx context.Context, embedding *domain.Embedding) (string, error) {
	id := embedding.ID
	if id == "" {
		id = uuid.New().String()
	}

	var storedID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO embeddings (id, chunk_id, vector, embedding_model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id, embedding_model) DO UPDATE SET
			vector = excluded.vector,
			created_at = excluded.created_at
		RETURNING id
	`, id, embedding.ChunkID, embedding.Vector, embedding.EmbeddingModel, s.now().UTC()).Scan(&storedID)
	if err != nil {
		return "", fmt.Errorf("saving embedding: %w", err)
	}
	return storedID, nil
}

// GetAllEmbeddings returns active-generation embeddings, optionally
// restricted to one model, ordered by chunk ID.
func (s *Store) GetAllEmbeddings(ctx context.Context, model string) ([]domain.StoredEmbedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.chunk_id, e.vector, e.embedding_model, e.created_at,
			c.document_id, d.file_path, c.content
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		JOIN documents d ON d.id = c.document_id AND d.generation = c.generation
		WHERE ? = '' OR e.embedding_model = ?
		ORDER BY e.chunk_id
	`, model, model)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredEmbedding //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.StoredEmbedding
		if err := rows.Scan(&e.ID, &e.ChunkID, &e.Vector, &e.EmbeddingModel, &e.CreatedAt,
			&e.DocumentID, &e.FilePath, &e.Content); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	return out, nil
}

// ==================== Generations ====================

// BeginGeneration allocates the next generation number for a document.
func (s *Store) BeginGeneration(ctx context.Context, documentID string) (int64, error) {
	var gen int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE documents SET generation_seq = generation_seq + 1
		WHERE id = ?
		RETURNING generation_seq
	`, documentID).Scan(&gen)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	if err != nil {
		return 0, fmt.Errorf("allocating generation: %w", err)
	}
	return gen, nil
}

// ActivateGeneration swaps the document to doc.Generation in one transaction.
func (s *Store) ActivateGeneration(ctx context.Context, doc *domain.Document) error {
	if !doc.EmbeddingStatus.IsValid() {
		return fmt.Errorf("%w: embedding status %q", domain.ErrInvalidInput, doc.EmbeddingStatus)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var active, seq int64
	err = tx.QueryRowContext(ctx,
		"SELECT generation, generation_seq FROM documents WHERE id = ?", doc.ID).Scan(&active, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, doc.ID)
	}
	if err != nil {
		return fmt.Errorf("reading generation: %w", err)
	}

	gen := doc.Generation
	if gen <= 0 || gen > seq {
		return fmt.Errorf("%w: generation %d was never allocated", domain.ErrInvalidInput, gen)
	}

	if gen <= active {
		if gen < active {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM chunks WHERE document_id = ? AND generation = ?", doc.ID, gen); err != nil {
				return fmt.Errorf("discarding stale chunks: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return fmt.Errorf("%w: generation %d, active %d", domain.ErrStaleGeneration, gen, active)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE documents SET
			generation = ?,
			title = ?,
			content = ?,
			content_hash = ?,
			file_size = ?,
			last_modified = ?,
			embedding_status = ?,
			embedding_model = ?,
			updated_at = ?
		WHERE id = ?
	`, gen, doc.Title, doc.Content, doc.ContentHash, doc.FileSize, doc.LastModified,
		doc.EmbeddingStatus.String(), doc.EmbeddingModel, s.now().UTC(), doc.ID)
	if err != nil {
		return fmt.Errorf("activating generation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ? AND generation < ?", doc.ID, gen); err != nil {
		return fmt.Errorf("deleting superseded chunks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a row selected with documentColumns.
// sql.ErrNoRows is returned unwrapped.
func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var status string

	if err := row.Scan(&doc.ID, &doc.FilePath, &doc.Title, &doc.Content, &doc.ContentHash,
		&doc.FileSize, &doc.LastModified, &status, &doc.EmbeddingModel, &doc.Generation,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	parsed, err := domain.ParseEmbeddingStatus(status)
	if err != nil {
		return nil, fmt.Errorf("scanning document %s: %w", doc.ID, err)
	}
	doc.EmbeddingStatus = parsed

	return &doc, nil
}
