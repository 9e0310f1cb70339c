// ABOUTME: SQLite document store for chunks, usage counters, and feedback
// ABOUTME: Uses modernc.org/sqlite; append-only chunks with vector BLOBs
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"studyrag/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	source     TEXT NOT NULL,
	title      TEXT NOT NULL,
	url        TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);

CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	rating     INTEGER NOT NULL,
	comment    TEXT,
	created_at TIMESTAMP NOT NULL
);
`

// Store owns the durable chunk collection and usage counters. Mutations are
// serialized behind a single mutex; reads may run concurrently and never
// observe a partially written record.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultDBPath returns the XDG-compliant default database location.
func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "studyrag", "studyrag.db")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "studyrag", "studyrag.db")
}

// Open opens or creates the store at path, creating the schema on first use.
// State loads on open; every mutation is durable once its call returns.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AppendChunk persists a new chunk record, assigning its identifier and
// creation time, and returns the stored record.
func (s *Store) AppendChunk(chunk models.Chunk) (models.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chunk.ID == "" {
		chunk.ID = uuid.New().String()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO chunks (id, text, embedding, source, title, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, chunk.ID, chunk.Text, vectorToBlob(chunk.Embedding), chunk.Source,
		chunk.Title, nullString(chunk.URL), chunk.CreatedAt)
	if err != nil {
		return models.Chunk{}, fmt.Errorf("failed to append chunk: %w", err)
	}
	return chunk, nil
}

// ListChunks returns all stored chunks in insertion order. A non-empty
// sources list restricts the result to those source tags.
func (s *Store) ListChunks(sources ...string) ([]models.Chunk, error) {
	query := `SELECT id, text, embedding, source, title, url, created_at FROM chunks`
	args := make([]interface{}, 0, len(sources))
	if len(sources) > 0 {
		query += ` WHERE source IN (?` + repeatPlaceholder(len(sources)-1) + `)`
		for _, src := range sources {
			args = append(args, src)
		}
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var (
			c    models.Chunk
			blob []byte
			url  sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Text, &blob, &c.Source, &c.Title, &url, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.Embedding = blobToVector(blob)
		if url.Valid {
			c.URL = url.String
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// IncrementQuestions bumps the monotonically increasing question counter.
func (s *Store) IncrementQuestions() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO counters (name, value) VALUES ('questions', 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
	`)
	if err != nil {
		return fmt.Errorf("failed to increment question counter: %w", err)
	}
	return nil
}

// AddFeedback appends a feedback record.
func (s *Store) AddFeedback(fb models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO feedback (question, answer, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, fb.Question, fb.Answer, fb.Rating, nullString(fb.Comment), fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add feedback: %w", err)
	}
	return nil
}

// Stats returns the usage counters: total questions asked plus feedback
// totals split by rating sign.
func (s *Store) Stats() (models.Stats, error) {
	var stats models.Stats

	err := s.db.QueryRow(`SELECT COALESCE(value, 0) FROM counters WHERE name = 'questions'`).
		Scan(&stats.TotalQuestions)
	if err != nil && err != sql.ErrNoRows {
		return models.Stats{}, fmt.Errorf("failed to read question counter: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN rating = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN rating = -1 THEN 1 ELSE 0 END), 0)
		FROM feedback
	`).Scan(&stats.TotalFeedback, &stats.PositiveFeedback, &stats.NegativeFeedback)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to read feedback stats: %w", err)
	}
	return stats, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// repeatPlaceholder returns n copies of ", ?" for IN clauses.
func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
