// Package sqlite reads and writes town datasets in a SQLite file using the
// pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"towncore/internal/dataset"
)

var _ dataset.Source = (*Source)(nil)

// Source is a dataset source backed by the towns and vassalships tables of a
// SQLite database.
type Source struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and ensures the
// dataset schema exists.
func Open(ctx context.Context, path string) (*Source, error) {
	if path == "" {
		path = "towncore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := dataset.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Source{db: db, path: path}, nil
}

// Describe implements dataset.Source.
func (s *Source) Describe() string { return "sqlite:" + s.path }

// Load implements dataset.Source.
func (s *Source) Load(ctx context.Context) (dataset.Dataset, error) {
	return dataset.ReadSQL(ctx, s.db)
}

// Import upserts ds into the database.
func (s *Source) Import(ctx context.Context, ds dataset.Dataset) error {
	return dataset.WriteSQL(ctx, s.db, ds, dataset.QuestionPlaceholder)
}

// DB exposes the underlying handle.
func (s *Source) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Source) Close() error { return s.db.Close() }
