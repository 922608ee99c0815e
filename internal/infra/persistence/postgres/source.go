// Package postgres reads and writes town datasets in PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"towncore/internal/dataset"
)

var _ dataset.Source = (*Source)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/towncore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Source is a dataset source backed by PostgreSQL tables.
type Source struct {
	db *sql.DB
}

// Open connects to dsn (falling back to a local default), pings the server and
// ensures the dataset schema exists.
func Open(ctx context.Context, dsn string) (*Source, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := dataset.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Source{db: db}, nil
}

// Describe implements dataset.Source.
func (s *Source) Describe() string { return "postgres" }

// Load implements dataset.Source.
func (s *Source) Load(ctx context.Context) (dataset.Dataset, error) {
	return dataset.ReadSQL(ctx, s.db)
}

// Import upserts ds into the database.
func (s *Source) Import(ctx context.Context, ds dataset.Dataset) error {
	return dataset.WriteSQL(ctx, s.db, ds, dataset.DollarPlaceholder)
}

// DB exposes the underlying handle.
func (s *Source) DB() *sql.DB { return s.db }

// Close releases the pool.
func (s *Source) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sql.Open function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
