package texturedb

import (
	"database/sql"
	"errors"
	"fmt"
)

// Reader reads variants from a database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='variants'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain variants table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadVariant returns the encoded image for texture in the given variant.
func (r *Reader) ReadVariant(texture, variant string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRow(
		"SELECT data FROM variants WHERE texture=? AND variant=?",
		texture, variant,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, texture, variant)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}

	return data, nil
}

// Variants lists the variant names stored for texture, sorted.
func (r *Reader) Variants(texture string) ([]string, error) {
	rows, err := r.db.Query("SELECT variant FROM variants WHERE texture=? ORDER BY variant", texture)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan variant row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return names, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return metadataFromMap(values), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
