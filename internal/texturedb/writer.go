package texturedb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultBatchSize is the number of variants buffered before a flush.
const DefaultBatchSize = 100

// Writer writes texture variants to a database. It is safe for concurrent use.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []Entry
	metadata  Metadata
	batchSize int
	mu        sync.Mutex
}

// New creates or opens the database at path and replaces its metadata.
// When metadata lists variants, stored rows of any other variant are deleted
// so the data table always matches the metadata.
func New(path string, metadata Metadata) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := insertMetadata(db, metadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	if err := pruneVariants(db, metadata.Variants); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prune variants: %w", err)
	}

	return &Writer{
		db:        db,
		path:      path,
		batch:     make([]Entry, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
		metadata:  metadata,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS variants (
			texture TEXT NOT NULL,
			variant TEXT NOT NULL,
			data BLOB NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS variant_index ON variants (texture, variant);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func insertMetadata(db *sql.DB, meta Metadata) error {
	if _, err := db.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stmt, err := db.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	return nil
}

func pruneVariants(db *sql.DB, keep []string) error {
	if len(keep) == 0 {
		return nil
	}

	args := make([]any, len(keep))
	for i, v := range keep {
		args[i] = v
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")

	if _, err := db.Exec("DELETE FROM variants WHERE variant NOT IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("failed to delete stale variants: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (w *Writer) Path() string {
	return w.path
}

// WriteVariant queues a variant; a full batch is flushed immediately.
func (w *Writer) WriteVariant(texture, variant string, data []byte) error {
	if texture == "" || variant == "" {
		return fmt.Errorf("texture and variant names are required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, Entry{Texture: texture, Variant: variant, Data: data})
	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Exists reports whether texture/variant is stored or queued for writing.
func (w *Writer) Exists(texture, variant string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.batch {
		if e.Texture == texture && e.Variant == variant {
			return true, nil
		}
	}

	var one int
	err := w.db.QueryRow("SELECT 1 FROM variants WHERE texture=? AND variant=?", texture, variant).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query variant: %w", err)
	}
	return true, nil
}

// Flush writes any buffered variants to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO variants (texture, variant, data) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range w.batch {
		if _, err := stmt.Exec(e.Texture, e.Variant, e.Data); err != nil {
			return fmt.Errorf("failed to insert %s/%s: %w", e.Texture, e.Variant, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Close flushes remaining variants and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
