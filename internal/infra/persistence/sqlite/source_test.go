package sqlite

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"towncore/internal/dataset"
)

func openTemp(t *testing.T) *Source {
	t.Helper()
	src, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "towns.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestImportThenLoad(t *testing.T) {
	ctx := context.Background()
	src := openTemp(t)
	ds := dataset.Dataset{
		Towns: []dataset.Town{
			{ID: "b", Name: "Kemi", X: 2, Y: -2, Tax: 5},
			{ID: "a", Name: "Oulu", X: 1, Y: 1, Tax: 10},
		},
		Vassalships: []dataset.Vassalship{{Vassal: "b", Master: "a"}},
	}
	if err := src.Import(ctx, ds); err != nil {
		t.Fatalf("import: %v", err)
	}
	ds.Towns[0].Name = "Kemi-2"
	if err := src.Import(ctx, ds); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	got, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Towns) != 2 || got.Towns[0].ID != "a" || got.Towns[1].Name != "Kemi-2" || got.Towns[1].Y != -2 {
		t.Fatalf("unexpected towns %+v", got.Towns)
	}
	if len(got.Vassalships) != 1 || got.Vassalships[0] != (dataset.Vassalship{Vassal: "b", Master: "a"}) {
		t.Fatalf("unexpected vassalships %+v", got.Vassalships)
	}
}

func TestRepeatedImportsKeepVassalshipOrder(t *testing.T) {
	ctx := context.Background()
	src := openTemp(t)
	towns := []dataset.Town{{ID: "m", Name: "M"}, {ID: "z", Name: "Z"}, {ID: "a", Name: "A"}, {ID: "k", Name: "K"}}
	first := dataset.Dataset{Towns: towns, Vassalships: []dataset.Vassalship{{Vassal: "z", Master: "m"}, {Vassal: "k", Master: "m"}}}
	second := dataset.Dataset{Vassalships: []dataset.Vassalship{{Vassal: "a", Master: "m"}}}
	for _, ds := range []dataset.Dataset{first, second} {
		if err := src.Import(ctx, ds); err != nil {
			t.Fatalf("import: %v", err)
		}
	}
	got, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []dataset.Vassalship{{Vassal: "z", Master: "m"}, {Vassal: "k", Master: "m"}, {Vassal: "a", Master: "m"}}
	if !slices.Equal(got.Vassalships, want) {
		t.Fatalf("expected import order %v, got %v", want, got.Vassalships)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "towns.db")
	for i := 0; i < 2; i++ {
		src, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if src.Describe() != "sqlite:"+path {
			t.Fatalf("unexpected description %q", src.Describe())
		}
		_ = src.Close()
	}
}

func TestLoadEmpty(t *testing.T) {
	got, err := openTemp(t).Load(context.Background())
	if err != nil || len(got.Towns) != 0 {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
}
