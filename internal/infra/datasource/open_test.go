package datasource_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"towncore/internal/config"
	"towncore/internal/dataset"
	"towncore/internal/infra/datasource"
	"towncore/internal/infra/persistence/postgres"
	"towncore/internal/infra/persistence/postgres/testutil"
)

func TestOpenBlobFilesystem(t *testing.T) {
	root := t.TempDir()
	body := "id,name,x,y,tax\na,Oulu,1,2,10\n"
	if err := os.WriteFile(filepath.Join(root, "towns.csv"), []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, closeFn, err := datasource.Open(context.Background(), config.DatasetConfig{
		Driver: "blob",
		Blob:   config.BlobConfig{Driver: "fs", Root: root, Key: "towns.csv"},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = closeFn() }()
	if src.Describe() != "blob:fs/towns.csv" {
		t.Fatalf("unexpected description %q", src.Describe())
	}
	ds, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Towns) != 1 || ds.Towns[0].Name != "Oulu" {
		t.Fatalf("unexpected towns %+v", ds.Towns)
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "towns.db")
	src, closeFn, err := datasource.Open(context.Background(), config.DatasetConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: path},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = closeFn() }()
	ds, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Towns) != 0 {
		t.Fatalf("expected empty dataset, got %+v", ds)
	}
}

func TestOpenPostgres(t *testing.T) {
	db, _ := testutil.NewStubDB()
	t.Cleanup(postgres.OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil }))
	src, closeFn, err := datasource.Open(context.Background(), config.DatasetConfig{
		Driver:   "postgres",
		Postgres: config.PostgresConfig{DSN: "postgres://db/towns"},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if src.Describe() != "postgres" {
		t.Fatalf("unexpected description %q", src.Describe())
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenNone(t *testing.T) {
	src, closeFn, err := datasource.Open(context.Background(), config.DatasetConfig{Driver: "none"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ds, err := src.Load(context.Background())
	if err != nil || len(ds.Towns) != 0 || closeFn() != nil {
		t.Fatalf("expected empty dataset, got %+v %v", ds, err)
	}
	var _ dataset.Source = datasource.Empty{}
}

func TestOpenErrors(t *testing.T) {
	_, _, err := datasource.Open(context.Background(), config.DatasetConfig{Driver: "ftp"})
	if err == nil || !strings.Contains(err.Error(), "unknown dataset driver") {
		t.Fatalf("expected driver error, got %v", err)
	}
	_, _, err = datasource.Open(context.Background(), config.DatasetConfig{
		Driver: "blob",
		Blob:   config.BlobConfig{Driver: "tape"},
	})
	if err == nil || !strings.Contains(err.Error(), "open blob store") {
		t.Fatalf("expected blob driver error, got %v", err)
	}
}

func TestBlobConfig(t *testing.T) {
	got := datasource.BlobConfig(config.BlobConfig{
		Driver: "s3",
		S3:     config.S3Config{Bucket: "towns", Region: "eu-north-1", PathStyle: true},
	})
	if got.Driver != "s3" || got.S3.Bucket != "towns" || got.S3.Region != "eu-north-1" || !got.S3.PathStyle {
		t.Fatalf("unexpected mapping %+v", got)
	}
}
