package index

import (
	"slices"
	"testing"

	"towncore/pkg/domain"
)

type fakeTown struct {
	name     string
	distance int
}

type fakeAttrs map[domain.TownID]*fakeTown

func (f fakeAttrs) Name(id domain.TownID) string { return f[id].name }

func (f fakeAttrs) Distance(id domain.TownID) int { return f[id].distance }

func newFixture(t *testing.T, towns ...[3]any) (fakeAttrs, *Dual) {
	t.Helper()
	attrs := fakeAttrs{}
	d := NewDual(attrs)
	for _, town := range towns {
		id := domain.TownID(town[0].(string))
		attrs[id] = &fakeTown{name: town[1].(string), distance: town[2].(int)}
		d.Append(id)
	}
	return attrs, d
}

func ids(values ...string) []domain.TownID {
	out := make([]domain.TownID, len(values))
	for i, v := range values {
		out[i] = domain.TownID(v)
	}
	return out
}

func TestAppendLeavesOrderingsDirty(t *testing.T) {
	_, d := newFixture(t, [3]any{"a", "Oulu", 10}, [3]any{"b", "Espoo", 3})
	stats := d.Stats()
	if stats.ByName.State != Dirty || stats.ByDistance.State != Dirty {
		t.Fatalf("expected dirty orderings, got %+v", stats)
	}
	if stats.ByName.Pending != 2 || stats.ByDistance.Pending != 2 {
		t.Fatalf("expected 2 pending, got %+v", stats)
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	_, d := newFixture(t, [3]any{"a", "Oulu", 10}, [3]any{"b", "Espoo", 3}, [3]any{"c", "Turku", 7})
	d.Materialize()
	first := d.Stats()
	if first.ByName.State != Clean || first.ByDistance.State != Clean {
		t.Fatalf("expected clean orderings, got %+v", first)
	}
	d.Materialize()
	if second := d.Stats(); second != first {
		t.Fatalf("second materialize changed state: %+v vs %+v", first, second)
	}
	if got := d.ByName(); !slices.Equal(got, ids("b", "a", "c")) {
		t.Fatalf("unexpected name ordering %v", got)
	}
	if got := d.ByDistance(); !slices.Equal(got, ids("b", "c", "a")) {
		t.Fatalf("unexpected distance ordering %v", got)
	}
}

func TestMaterializeMergesSuffixIntoPrefix(t *testing.T) {
	attrs, d := newFixture(t, [3]any{"a", "A", 1}, [3]any{"c", "C", 5}, [3]any{"e", "E", 9})
	d.Materialize()
	for _, town := range [][3]any{{"d", "D", 7}, {"b", "B", 3}, {"f", "F", 5}} {
		id := domain.TownID(town[0].(string))
		attrs[id] = &fakeTown{name: town[1].(string), distance: town[2].(int)}
		d.Append(id)
	}
	if got := d.ByName(); !slices.Equal(got, ids("a", "b", "c", "d", "e", "f")) {
		t.Fatalf("unexpected name ordering %v", got)
	}
	// equal distances keep the prefix entry first
	if got := d.ByDistance(); !slices.Equal(got, ids("a", "b", "c", "f", "d", "e")) {
		t.Fatalf("unexpected distance ordering %v", got)
	}
	stats := d.Stats()
	if stats.ByName.Merges != 1 || stats.ByName.Sorts != 2 {
		t.Fatalf("unexpected counters %+v", stats.ByName)
	}
}

func TestEqualNamesKeepInsertionOrder(t *testing.T) {
	_, d := newFixture(t, [3]any{"z", "Same", 1}, [3]any{"a", "Same", 2}, [3]any{"m", "Other", 3})
	if got := d.ByName(); !slices.Equal(got, ids("m", "z", "a")) {
		t.Fatalf("expected stable order for equal names, got %v", got)
	}
}

func TestFindByNameSortedByID(t *testing.T) {
	_, d := newFixture(t,
		[3]any{"high", "X", 1},
		[3]any{"mid", "Y", 2},
		[3]any{"low", "X", 3},
	)
	if got := d.FindByName("X"); !slices.Equal(got, ids("high", "low")) {
		t.Fatalf("unexpected matches %v", got)
	}
	got := d.FindByName("missing")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRemoveErasesExactIDAmongEqualKeys(t *testing.T) {
	_, d := newFixture(t,
		[3]any{"a", "Same", 5},
		[3]any{"b", "Same", 5},
		[3]any{"c", "Same", 5},
	)
	if !d.Remove("b") {
		t.Fatalf("expected remove to succeed")
	}
	if got := d.ByName(); !slices.Equal(got, ids("a", "c")) {
		t.Fatalf("unexpected name ordering %v", got)
	}
	if got := d.ByDistance(); !slices.Equal(got, ids("a", "c")) {
		t.Fatalf("unexpected distance ordering %v", got)
	}
	if d.Remove("b") {
		t.Fatalf("expected second remove to fail")
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 ids, got %d", d.Len())
	}
}

func TestRemoveMaterializesBothOrderings(t *testing.T) {
	_, d := newFixture(t, [3]any{"a", "A", 1}, [3]any{"b", "B", 2})
	d.Remove("a")
	stats := d.Stats()
	if stats.ByName.State != Clean || stats.ByDistance.State != Clean {
		t.Fatalf("expected clean orderings after removal, got %+v", stats)
	}
}

func TestRenameRepositionsPrefixEntry(t *testing.T) {
	attrs, d := newFixture(t,
		[3]any{"a", "Alpha", 1},
		[3]any{"b", "Beta", 2},
		[3]any{"c", "Gamma", 3},
		[3]any{"d", "Delta", 4},
	)
	d.Materialize()
	d.Rename("a", func() { attrs["a"].name = "Omega" })
	if got := d.ByName(); !slices.Equal(got, ids("b", "d", "c", "a")) {
		t.Fatalf("unexpected order after rename %v", got)
	}
	d.Rename("a", func() { attrs["a"].name = "Aardvark" })
	if got := d.ByName(); !slices.Equal(got, ids("a", "b", "d", "c")) {
		t.Fatalf("unexpected order after second rename %v", got)
	}
	if d.Stats().ByName.State != Clean {
		t.Fatalf("rename must not dirty the ordering")
	}
}

func TestRenamePlacesAfterEqualNames(t *testing.T) {
	attrs, d := newFixture(t, [3]any{"a", "A", 1}, [3]any{"b", "B", 2}, [3]any{"c", "C", 3})
	d.Materialize()
	d.Rename("a", func() { attrs["a"].name = "B" })
	if got := d.ByName(); !slices.Equal(got, ids("b", "a", "c")) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestRenamePendingEntry(t *testing.T) {
	attrs, d := newFixture(t, [3]any{"a", "B", 1})
	d.Materialize()
	attrs["n"] = &fakeTown{name: "C", distance: 1}
	d.Append("n")
	d.Rename("n", func() { attrs["n"].name = "A" })
	if got := d.ByName(); !slices.Equal(got, ids("n", "a")) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestNthAndExtremes(t *testing.T) {
	_, d := newFixture(t, [3]any{"a", "A", 9}, [3]any{"b", "B", 1}, [3]any{"c", "C", 4})
	if id, ok := d.Nearest(); !ok || id != "b" {
		t.Fatalf("expected nearest b, got %q", id)
	}
	if id, ok := d.Farthest(); !ok || id != "a" {
		t.Fatalf("expected farthest a, got %q", id)
	}
	if id, ok := d.NthByDistance(1); !ok || id != "c" {
		t.Fatalf("expected c, got %q", id)
	}
	if _, ok := d.NthByDistance(3); ok {
		t.Fatalf("expected out of range")
	}
	d.Clear()
	if _, ok := d.Nearest(); ok {
		t.Fatalf("expected empty index")
	}
	if id, _ := d.Farthest(); id != domain.NoID {
		t.Fatalf("expected NoID, got %q", id)
	}
}

func TestStateString(t *testing.T) {
	if Clean.String() != "clean" || Dirty.String() != "dirty" || State(7).String() != "unknown" {
		t.Fatalf("unexpected state strings")
	}
}
