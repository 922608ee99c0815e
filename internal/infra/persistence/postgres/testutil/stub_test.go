package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubUpsertAndSelect(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	insert := "INSERT INTO towns (id, name) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET name = excluded.name"
	for _, name := range []string{"Oulu", "Oulu-2"} {
		if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "a"}, {Value: name}}); err != nil {
			t.Fatalf("ExecContext: %v", err)
		}
	}
	if len(conn.Tables["towns"]) != 1 {
		t.Fatalf("expected upsert to replace row, got %v", conn.Tables["towns"])
	}
	rows, err := conn.QueryContext(ctx, "SELECT id, name FROM towns ORDER BY id", nil)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	defer func() { _ = rows.Close() }()
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "a" || dest[1] != "Oulu-2" {
		t.Fatalf("unexpected row values: %v", dest)
	}
}

func TestStubFailures(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.FailTables = map[string]bool{"towns": true}
	if _, err := conn.ExecContext(ctx, "INSERT INTO towns (id) VALUES ($1)", []driver.NamedValue{{Value: "a"}}); err == nil {
		t.Fatalf("expected table failure")
	}
	if _, err := conn.ExecContext(ctx, "INSERT INTO links (a, b) VALUES ($1)", []driver.NamedValue{{Value: "a"}}); err == nil {
		t.Fatalf("expected column mismatch")
	}
	if _, err := conn.QueryContext(ctx, "DELETE FROM towns", nil); err == nil {
		t.Fatalf("expected parse failure")
	}
	conn.FailExec = true
	if err := conn.Ping(ctx); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestStubNextValue(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	next := func() driver.Value {
		t.Helper()
		rows, err := conn.QueryContext(ctx, "SELECT COALESCE(MAX(seq) + 1, 0) FROM vassalships", nil)
		if err != nil {
			t.Fatalf("QueryContext: %v", err)
		}
		defer func() { _ = rows.Close() }()
		dest := make([]driver.Value, 1)
		if err := rows.Next(dest); err != nil {
			t.Fatalf("Next: %v", err)
		}
		return dest[0]
	}
	if got := next(); got != int64(0) {
		t.Fatalf("expected 0 on an empty table, got %v", got)
	}
	insert := "INSERT INTO vassalships (vassal, master, seq) VALUES ($1, $2, $3)"
	if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "b"}, {Value: "a"}, {Value: int64(4)}}); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	if got := next(); got != int64(5) {
		t.Fatalf("expected 5, got %v", got)
	}
}
