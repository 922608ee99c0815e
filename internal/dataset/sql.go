package dataset

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the table layout SQL sources read from. Both statements are
// idempotent and portable between SQLite and PostgreSQL.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS towns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		tax INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS vassalships (
		vassal TEXT PRIMARY KEY REFERENCES towns(id),
		master TEXT NOT NULL REFERENCES towns(id),
		seq INTEGER NOT NULL DEFAULT 0
	)`,
}

const (
	selectTowns       = `SELECT id, name, x, y, tax FROM towns ORDER BY id`
	selectVassalships = `SELECT vassal, master FROM vassalships ORDER BY seq, vassal`
	selectNextSeq     = `SELECT COALESCE(MAX(seq) + 1, 0) FROM vassalships`
)

// EnsureSchema creates the dataset tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply dataset schema: %w", err)
		}
	}
	return nil
}

// ReadSQL loads every town and vassalship from db.
func ReadSQL(ctx context.Context, db *sql.DB) (Dataset, error) {
	var ds Dataset
	rows, err := db.QueryContext(ctx, selectTowns)
	if err != nil {
		return Dataset{}, fmt.Errorf("query towns: %w", err)
	}
	for rows.Next() {
		var t Town
		if err := rows.Scan(&t.ID, &t.Name, &t.X, &t.Y, &t.Tax); err != nil {
			_ = rows.Close()
			return Dataset{}, fmt.Errorf("scan town: %w", err)
		}
		ds.Towns = append(ds.Towns, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return Dataset{}, err
	}
	_ = rows.Close()

	rows, err = db.QueryContext(ctx, selectVassalships)
	if err != nil {
		return Dataset{}, fmt.Errorf("query vassalships: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var v Vassalship
		if err := rows.Scan(&v.Vassal, &v.Master); err != nil {
			return Dataset{}, fmt.Errorf("scan vassalship: %w", err)
		}
		ds.Vassalships = append(ds.Vassalships, v)
	}
	return ds, rows.Err()
}

// Placeholder renders the n-th (1-based) bind parameter of a SQL dialect.
type Placeholder func(n int) string

// QuestionPlaceholder renders SQLite style parameters.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders PostgreSQL style parameters.
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// WriteSQL upserts every row of ds inside one transaction. Vassalships keep
// their dataset order through the seq column, numbered after every row
// already stored so repeated imports append rather than interleave.
func WriteSQL(ctx context.Context, db *sql.DB, ds Dataset, ph Placeholder) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dataset write: %w", err)
	}
	upsertTown := fmt.Sprintf(`INSERT INTO towns (id, name, x, y, tax) VALUES (%s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, x = excluded.x, y = excluded.y, tax = excluded.tax`,
		ph(1), ph(2), ph(3), ph(4), ph(5))
	for _, t := range ds.Towns {
		if _, err := tx.ExecContext(ctx, upsertTown, string(t.ID), t.Name, t.X, t.Y, t.Tax); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write town %q: %w", t.ID, err)
		}
	}
	var next int64
	if err := tx.QueryRowContext(ctx, selectNextSeq).Scan(&next); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read vassalship seq: %w", err)
	}
	upsertLink := fmt.Sprintf(`INSERT INTO vassalships (vassal, master, seq) VALUES (%s, %s, %s)
		ON CONFLICT (vassal) DO UPDATE SET master = excluded.master, seq = excluded.seq`,
		ph(1), ph(2), ph(3))
	for i, v := range ds.Vassalships {
		if _, err := tx.ExecContext(ctx, upsertLink, string(v.Vassal), string(v.Master), next+int64(i)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write vassalship %q: %w", v.Vassal, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset write: %w", err)
	}
	return nil
}
