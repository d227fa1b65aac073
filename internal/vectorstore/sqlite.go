// Package vectorstore persists document embeddings in a SQLite table
// with a fixed vector dimension baked in at store construction.
package vectorstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrDimensionMismatch indicates a vector width disagreement against the
// store's declared dimension. Raised before any row is written.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// metaDimensionKey is the store_meta row carrying the baked-in dimension.
const metaDimensionKey = "dimension"

// Store wraps a SQLite connection holding one document_embeddings table.
// Changing dimension requires a new store file.
type Store struct {
	db  *sql.DB
	dim int
}

// Open opens or creates a store at the given path with the given
// dimension and ensures the schema exists.
func Open(path string, dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dim: dim}
	if err := s.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenExisting opens a store whose dimension was fixed by a previous
// Open, reading the dimension from the store itself.
func OpenExisting(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	db.SetMaxOpenConns(1)

	var value string
	err = db.QueryRow("SELECT value FROM store_meta WHERE key = ?", metaDimensionKey).Scan(&value)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading store dimension (is %s an initialized store?): %w", path, err)
	}
	dim, err := strconv.Atoi(value)
	if err != nil || dim <= 0 {
		db.Close()
		return nil, fmt.Errorf("invalid stored dimension %q", value)
	}

	return &Store{db: db, dim: dim}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dim returns the store's fixed embedding dimension.
func (s *Store) Dim() int {
	return s.dim
}

// InitSchema idempotently ensures the embeddings table exists and pins
// the dimension. Reopening with a different dimension is an error.
func (s *Store) InitSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS document_embeddings (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker    TEXT NOT NULL,
			doc_id    TEXT NOT NULL,
			content   TEXT NOT NULL,
			period    TEXT,
			embedding TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_document_embeddings_ticker
			ON document_embeddings(ticker);

		CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var existing string
	err := s.db.QueryRow("SELECT value FROM store_meta WHERE key = ?", metaDimensionKey).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(
			"INSERT INTO store_meta (key, value) VALUES (?, ?)",
			metaDimensionKey, strconv.Itoa(s.dim),
		); err != nil {
			return fmt.Errorf("recording dimension: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading dimension: %w", err)
	case existing != strconv.Itoa(s.dim):
		return fmt.Errorf("store has dimension %s, requested %d: a new dimension requires a new store file", existing, s.dim)
	}

	return nil
}

// InsertDocuments bulk-appends one row per document for a ticker. All
// vectors are validated against the store dimension before any row is
// written; on validation failure nothing commits. Re-inserting an
// existing doc_id appends a duplicate row.
//
// TODO: dedupe doc_ids on insert; callers currently dedupe upstream.
func (s *Store) InsertDocuments(ticker string, docIDs, contents, periods []string, vectors [][]float32) error {
	n := len(docIDs)
	if len(contents) != n || len(periods) != n || len(vectors) != n {
		return fmt.Errorf("mismatched batch lengths for %s: %d ids, %d contents, %d periods, %d vectors",
			ticker, n, len(contents), len(periods), len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != s.dim {
			return fmt.Errorf("%w: %s/%s has width %d, store expects %d",
				ErrDimensionMismatch, ticker, docIDs[i], len(vec), s.dim)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning insert for %s: %w", ticker, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO document_embeddings (ticker, doc_id, content, period, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range docIDs {
		if _, err := stmt.Exec(ticker, docIDs[i], contents[i], periods[i], FormatVector(vectors[i])); err != nil {
			return fmt.Errorf("inserting %s/%s: %w", ticker, docIDs[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert for %s: %w", ticker, err)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM document_embeddings").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return n, nil
}

// FormatVector serializes a vector as a literal float list, the
// interchange form the similarity engine parses back.
func FormatVector(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
