package testing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/gridkv/gridkv/lib/store"
	"github.com/gridkv/gridkv/remote/codec"
	"github.com/gridkv/gridkv/remote/memory"
)

// StoreFactory is a function that creates a new, not yet opened store
// instance for conformance testing. The seed grid (header row included)
// populates the backing table before hydration; the returned memory.Table is
// the remote side of the store, exposed so tests can assert on the remote
// traffic and inject failures. The store must encode cells with the JSON
// codec.
type StoreFactory func(t testing.TB, seed [][]string) (store.IStore, *memory.Table)

// RunStoreTests runs a comprehensive test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Hydrate&Get", func(t *testing.T) {
			testHydrateAndGet(t, factory)
		})

		t.Run("RoundTrip", func(t *testing.T) {
			testRoundTrip(t, factory)
		})

		t.Run("PartialUpdate", func(t *testing.T) {
			testPartialUpdate(t, factory)
		})

		t.Run("Ensure", func(t *testing.T) {
			testEnsure(t, factory)
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory)
		})

		t.Run("DeletePath", func(t *testing.T) {
			testDeletePath(t, factory)
		})

		t.Run("Renumbering", func(t *testing.T) {
			testRenumbering(t, factory)
		})

		t.Run("DeleteAll", func(t *testing.T) {
			testDeleteAll(t, factory)
		})

		t.Run("RowMirror", func(t *testing.T) {
			testRowMirror(t, factory)
		})

		t.Run("NotReady", func(t *testing.T) {
			testNotReady(t, factory)
		})

		t.Run("InvalidValue", func(t *testing.T) {
			testInvalidValue(t, factory)
		})

		t.Run("OpenOnce", func(t *testing.T) {
			testOpenOnce(t, factory)
		})

		t.Run("ReplicationFailure", func(t *testing.T) {
			testReplicationFailure(t, factory)
		})

		t.Run("ConcurrentWrites", func(t *testing.T) {
			testConcurrentWrites(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// defaultSeed returns the example grid used by most tests: a scalar under
// "a", a nested value under "b".
func defaultSeed() [][]string {
	return [][]string{
		{"key", "value"},
		{"a", "1"},
		{"b", `{"x":1}`},
	}
}

// emptySeed returns a grid holding only the header row.
func emptySeed() [][]string {
	return [][]string{{"key", "value"}}
}

// mustOpen opens the store and fails the test on error.
func mustOpen(t testing.TB, st store.IStore) {
	t.Helper()
	if err := st.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
}

// mustGet fetches a key that is expected to exist.
func mustGet(t testing.TB, st store.IStore, key, path string) any {
	t.Helper()
	value, found, err := st.Get(key, path)
	if err != nil {
		t.Fatalf("Get(%q, %q) failed: %v", key, path, err)
	}
	if !found {
		t.Fatalf("Get(%q, %q) did not find a value", key, path)
	}
	return value
}

// decodeCell turns stored cell text back into a value for comparisons.
func decodeCell(t testing.TB, cell string) any {
	t.Helper()
	value, err := codec.NewJSONCodec().Decode(cell)
	if err != nil {
		// raw string cell
		return cell
	}
	return value
}

// assertMirror checks the core invariant: every key sits at the remote row
// matching its index position and the stored cell decodes to the cached value.
func assertMirror(t testing.TB, st store.IStore, table *memory.Table) {
	t.Helper()

	keys := st.Keys()
	rows := table.Rows()

	if st.Len() != len(keys) {
		t.Errorf("Len() = %d, but Keys() returned %d keys", st.Len(), len(keys))
	}
	if len(rows)-1 != len(keys) {
		t.Fatalf("Remote table has %d data rows, store has %d keys", len(rows)-1, len(keys))
	}

	for i, key := range keys {
		row := rows[i+1]
		if row[0] != key {
			t.Errorf("Key %q has index position %d but remote row %d holds %q", key, i, i+2, row[0])
			continue
		}
		remoteValue := decodeCell(t, row[1])
		localValue := mustGet(t, st, key, "")
		if !reflect.DeepEqual(localValue, remoteValue) {
			t.Errorf("Value for key %q diverged: local %#v, remote %#v", key, localValue, remoteValue)
		}
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testHydrateAndGet(t *testing.T, factory StoreFactory) {
	st, table := factory(t, defaultSeed())
	mustOpen(t, st)

	if got := mustGet(t, st, "a", ""); got != float64(1) {
		t.Errorf("Get(a) = %#v, want 1", got)
	}
	if got := mustGet(t, st, "b", "x"); got != float64(1) {
		t.Errorf("Get(b, x) = %#v, want 1", got)
	}
	if got := mustGet(t, st, "b", ""); !reflect.DeepEqual(got, map[string]any{"x": float64(1)}) {
		t.Errorf("Get(b) = %#v, want {x: 1}", got)
	}

	if _, found, err := st.Get("missing", ""); err != nil || found {
		t.Errorf("Get(missing) = found %v, err %v, want absent without error", found, err)
	}
	if _, found, err := st.Get("b", "nope"); err != nil || found {
		t.Errorf("Get(b, nope) = found %v, err %v, want absent without error", found, err)
	}

	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
	if keys := st.Keys(); !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}

	report, err := st.Report()
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if report.Rows != 2 || report.Loaded != 2 || len(report.Skipped) != 0 {
		t.Errorf("Report() = %+v, want 2 rows, 2 loaded, none skipped", report)
	}

	// hydration is a single fetch, reads never touch the remote table
	if calls := table.Calls(); calls.Fetch != 1 || calls.Append != 0 || calls.Update != 0 {
		t.Errorf("Unexpected remote traffic for reads: %+v", calls)
	}

	// mutating a returned value must not leak into the store
	got := mustGet(t, st, "b", "").(map[string]any)
	got["x"] = float64(99)
	if again := mustGet(t, st, "b", "x"); again != float64(1) {
		t.Errorf("Get should return a copy, store now holds %#v", again)
	}
}

func testRoundTrip(t *testing.T, factory StoreFactory) {
	st, _ := factory(t, emptySeed())
	mustOpen(t, st)
	ctx := context.Background()

	values := map[string]any{
		"string": "hello world",
		"number": float64(12.5),
		"bool":   true,
		"slice":  []any{float64(1), "two", nil},
		"nested": map[string]any{
			"name": "job",
			"opts": map[string]any{"retries": float64(3), "tags": []any{"a", "b"}},
		},
	}

	for key, value := range values {
		if err := st.Set(ctx, key, "", value); err != nil {
			t.Fatalf("Set(%q) failed: %v", key, err)
		}
	}

	for key, want := range values {
		if got := mustGet(t, st, key, ""); !reflect.DeepEqual(got, want) {
			t.Errorf("Value for %q doesn't match after round trip:\nOriginal: %#v\nResult: %#v", key, want, got)
		}
	}
}

func testPartialUpdate(t *testing.T, factory StoreFactory) {
	st, table := factory(t, defaultSeed())
	mustOpen(t, st)
	ctx := context.Background()

	if err := st.Set(ctx, "b", "y", float64(2)); err != nil {
		t.Fatalf("Set(b, y) failed: %v", err)
	}

	want := map[string]any{"x": float64(1), "y": float64(2)}
	if got := mustGet(t, st, "b", ""); !reflect.DeepEqual(got, want) {
		t.Errorf("Get(b) = %#v, want %#v", got, want)
	}

	// the sibling field survived and the write was a single cell update
	if got := mustGet(t, st, "b", "x"); got != float64(1) {
		t.Errorf("Sibling field changed: Get(b, x) = %#v, want 1", got)
	}
	if calls := table.Calls(); calls.Update != 1 || calls.Append != 0 {
		t.Errorf("Expected exactly one cell update, got %+v", calls)
	}
	if got := decodeCell(t, table.Rows()[2][1]); !reflect.DeepEqual(got, want) {
		t.Errorf("Remote cell = %#v, want %#v", got, want)
	}

	// a deep path extends the structure in place
	if err := st.Set(ctx, "b", "deep.list[1]", "end"); err != nil {
		t.Fatalf("Set(b, deep.list[1]) failed: %v", err)
	}
	if got := mustGet(t, st, "b", "deep"); !reflect.DeepEqual(got, map[string]any{"list": []any{nil, "end"}}) {
		t.Errorf("Get(b, deep) = %#v, want {list: [nil end]}", got)
	}

	// a path write on a scalar discards the scalar
	if err := st.Set(ctx, "a", "n", float64(5)); err != nil {
		t.Fatalf("Set(a, n) failed: %v", err)
	}
	if got := mustGet(t, st, "a", ""); !reflect.DeepEqual(got, map[string]any{"n": float64(5)}) {
		t.Errorf("Get(a) = %#v, want {n: 5}", got)
	}

	// a path write on an absent key starts from an empty structure
	if err := st.Set(ctx, "fresh", "cfg.on", true); err != nil {
		t.Fatalf("Set(fresh, cfg.on) failed: %v", err)
	}
	if got := mustGet(t, st, "fresh", "cfg"); !reflect.DeepEqual(got, map[string]any{"on": true}) {
		t.Errorf("Get(fresh, cfg) = %#v, want {on: true}", got)
	}

	assertMirror(t, st, table)
}

func testEnsure(t *testing.T, factory StoreFactory) {
	st, table := factory(t, defaultSeed())
	mustOpen(t, st)

	// absent key: the default is returned but not stored
	got, err := st.Ensure("missing", "", float64(9))
	if err != nil || got != float64(9) {
		t.Errorf("Ensure(missing) = %#v, %v, want the default", got, err)
	}
	if _, found, _ := st.Get("missing", ""); found {
		t.Errorf("Ensure must not store the default")
	}
	if calls := table.Calls(); calls.Append != 0 || calls.Update != 0 {
		t.Errorf("Ensure must not produce remote writes, got %+v", calls)
	}

	// scalar value: returned as-is, path and default are ignored
	if got, err := st.Ensure("a", "", float64(9)); err != nil || got != float64(1) {
		t.Errorf("Ensure(a) = %#v, %v, want the stored scalar", got, err)
	}
	if got, err := st.Ensure("a", "some.path", float64(9)); err != nil || got != float64(1) {
		t.Errorf("Ensure(a, some.path) = %#v, %v, want the stored scalar", got, err)
	}

	// nested value: the path resolves or yields nil, the default only covers
	// fully absent keys
	if got, err := st.Ensure("b", "x", float64(9)); err != nil || got != float64(1) {
		t.Errorf("Ensure(b, x) = %#v, %v, want 1", got, err)
	}
	if got, err := st.Ensure("b", "z", float64(9)); err != nil || got != nil {
		t.Errorf("Ensure(b, z) = %#v, %v, want nil for a missed path", got, err)
	}
	want := map[string]any{"x": float64(1)}
	if got, err := st.Ensure("b", "", float64(9)); err != nil || !reflect.DeepEqual(got, want) {
		t.Errorf("Ensure(b) = %#v, %v, want %#v", got, err, want)
	}
}

func testDelete(t *testing.T, factory StoreFactory) {
	st, table := factory(t, [][]string{
		{"key", "value"},
		{"a", "1"},
		{"b", "2"},
		{"c", "3"},
	})
	mustOpen(t, st)
	ctx := context.Background()

	if err := st.Delete(ctx, "b", ""); err != nil {
		t.Fatalf("Delete(b) failed: %v", err)
	}

	if _, found, _ := st.Get("b", ""); found {
		t.Errorf("Key b still readable after Delete")
	}
	if keys := st.Keys(); !reflect.DeepEqual(keys, []string{"a", "c"}) {
		t.Errorf("Keys() = %v, want [a c]", keys)
	}
	if got := table.DeletedRanges(); !reflect.DeepEqual(got, [][2]int{{3, 4}}) {
		t.Errorf("Expected deletion of remote row 3, got %v", got)
	}

	// deleting an absent key is a no-op without remote traffic
	if err := st.Delete(ctx, "missing", ""); err != nil {
		t.Errorf("Delete(missing) = %v, want no-op", err)
	}
	if calls := table.Calls(); calls.Delete != 1 {
		t.Errorf("Expected exactly one remote deletion, got %+v", calls)
	}

	assertMirror(t, st, table)
}

func testDeletePath(t *testing.T, factory StoreFactory) {
	st, table := factory(t, [][]string{
		{"key", "value"},
		{"a", "1"},
		{"b", `{"x":1,"y":2}`},
	})
	mustOpen(t, st)
	ctx := context.Background()

	// a path delete prunes the field and replicates as a cell update
	if err := st.Delete(ctx, "b", "y"); err != nil {
		t.Fatalf("Delete(b, y) failed: %v", err)
	}
	want := map[string]any{"x": float64(1)}
	if got := mustGet(t, st, "b", ""); !reflect.DeepEqual(got, want) {
		t.Errorf("Get(b) = %#v, want %#v", got, want)
	}
	if calls := table.Calls(); calls.Update != 1 || calls.Delete != 0 {
		t.Errorf("Expected a cell update and no row deletion, got %+v", calls)
	}

	// a path delete against a scalar fails
	err := st.Delete(ctx, "a", "x")
	if !store.IsCode(err, store.RetCInvalidOperation) {
		t.Errorf("Delete(a, x) = %v, want RetCInvalidOperation", err)
	}
	if got := mustGet(t, st, "a", ""); got != float64(1) {
		t.Errorf("Scalar changed by failed path delete: %#v", got)
	}

	// a missed path is a no-op without remote traffic
	if err := st.Delete(ctx, "b", "nope"); err != nil {
		t.Errorf("Delete(b, nope) = %v, want no-op", err)
	}
	if calls := table.Calls(); calls.Update != 1 {
		t.Errorf("Missed path caused remote traffic: %+v", calls)
	}

	assertMirror(t, st, table)
}

func testRenumbering(t *testing.T, factory StoreFactory) {
	st, table := factory(t, defaultSeed())
	mustOpen(t, st)
	ctx := context.Background()

	// deleting "a" moves "b" from row 3 to row 2
	if err := st.Delete(ctx, "a", ""); err != nil {
		t.Fatalf("Delete(a) failed: %v", err)
	}
	if err := st.Set(ctx, "b", "y", float64(2)); err != nil {
		t.Fatalf("Set(b, y) failed: %v", err)
	}

	rows := table.Rows()
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one data row, got %d rows", len(rows))
	}
	want := map[string]any{"x": float64(1), "y": float64(2)}
	if rows[1][0] != "b" || !reflect.DeepEqual(decodeCell(t, rows[1][1]), want) {
		t.Errorf("Row 2 = %v, want key b with %#v", rows[1], want)
	}

	// a key appended after the deletion lands below the shifted rows
	if err := st.Set(ctx, "c", "", float64(3)); err != nil {
		t.Fatalf("Set(c) failed: %v", err)
	}
	if keys := st.Keys(); !reflect.DeepEqual(keys, []string{"b", "c"}) {
		t.Errorf("Keys() = %v, want [b c]", keys)
	}

	assertMirror(t, st, table)
}

func testDeleteAll(t *testing.T, factory StoreFactory) {
	st, table := factory(t, [][]string{
		{"key", "value"},
		{"a", "1"},
		{"b", "2"},
		{"c", "3"},
	})
	mustOpen(t, st)
	ctx := context.Background()

	if err := st.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	if st.Len() != 0 || len(st.Keys()) != 0 {
		t.Errorf("Store not empty after DeleteAll: Len %d, Keys %v", st.Len(), st.Keys())
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, found, _ := st.Get(key, ""); found {
			t.Errorf("Key %q still readable after DeleteAll", key)
		}
	}

	// exactly one bulk deletion spanning all three data rows
	if got := table.DeletedRanges(); !reflect.DeepEqual(got, [][2]int{{2, 5}}) {
		t.Errorf("Expected one bulk deletion of rows [2,5), got %v", got)
	}
	if rows := table.Rows(); len(rows) != 1 {
		t.Errorf("Remote table kept %d rows, want only the header", len(rows))
	}

	// an empty store produces no further remote deletion
	if err := st.DeleteAll(ctx); err != nil {
		t.Fatalf("Second DeleteAll failed: %v", err)
	}
	if calls := table.Calls(); calls.Delete != 1 {
		t.Errorf("DeleteAll on empty store touched the remote table: %+v", calls)
	}

	// the store remains usable
	if err := st.Set(ctx, "d", "", float64(4)); err != nil {
		t.Fatalf("Set after DeleteAll failed: %v", err)
	}
	assertMirror(t, st, table)
}

func testRowMirror(t *testing.T, factory StoreFactory) {
	st, table := factory(t, defaultSeed())
	mustOpen(t, st)
	ctx := context.Background()

	steps := []struct {
		name string
		op   func() error
	}{
		{"Hydrate", func() error { return nil }},
		{"Append", func() error { return st.Set(ctx, "c", "", map[string]any{"n": float64(1)}) }},
		{"Update", func() error { return st.Set(ctx, "a", "", "replaced") }},
		{"PathUpdate", func() error { return st.Set(ctx, "c", "n", float64(2)) }},
		{"PathDelete", func() error { return st.Delete(ctx, "b", "x") }},
		{"RowDelete", func() error { return st.Delete(ctx, "a", "") }},
		{"AppendAfterDelete", func() error { return st.Set(ctx, "d", "", float64(4)) }},
	}

	for _, step := range steps {
		if err := step.op(); err != nil {
			t.Fatalf("Step %s failed: %v", step.name, err)
		}
		t.Run(step.name, func(t *testing.T) {
			assertMirror(t, st, table)
		})
	}
}

func testNotReady(t *testing.T, factory StoreFactory) {
	st, table := factory(t, defaultSeed())
	ctx := context.Background()

	if st.Ready() {
		t.Fatalf("Store reports ready before Open")
	}

	if _, _, err := st.Get("a", ""); !store.IsCode(err, store.RetCNotReady) {
		t.Errorf("Get before Open = %v, want RetCNotReady", err)
	}
	if _, err := st.Ensure("a", "", float64(1)); !store.IsCode(err, store.RetCNotReady) {
		t.Errorf("Ensure before Open = %v, want RetCNotReady", err)
	}
	if err := st.Set(ctx, "a", "", float64(1)); !store.IsCode(err, store.RetCNotReady) {
		t.Errorf("Set before Open = %v, want RetCNotReady", err)
	}
	if err := st.Delete(ctx, "a", ""); !store.IsCode(err, store.RetCNotReady) {
		t.Errorf("Delete before Open = %v, want RetCNotReady", err)
	}
	if err := st.DeleteAll(ctx); !store.IsCode(err, store.RetCNotReady) {
		t.Errorf("DeleteAll before Open = %v, want RetCNotReady", err)
	}
	if _, err := st.Report(); !store.IsCode(err, store.RetCNotReady) {
		t.Errorf("Report before Open = %v, want RetCNotReady", err)
	}
	if keys := st.Keys(); len(keys) != 0 {
		t.Errorf("Keys before Open = %v, want empty", keys)
	}
	if st.Len() != 0 {
		t.Errorf("Len before Open = %d, want 0", st.Len())
	}

	// nothing may have reached the remote table
	if calls := table.Calls(); calls != (memory.Counters{}) {
		t.Errorf("Remote traffic before Open: %+v", calls)
	}
}

func testInvalidValue(t *testing.T, factory StoreFactory) {
	st, table := factory(t, emptySeed())
	mustOpen(t, st)
	ctx := context.Background()

	if err := st.Set(ctx, "k", "", nil); !store.IsCode(err, store.RetCInvalidValue) {
		t.Errorf("Set(nil) = %v, want RetCInvalidValue", err)
	}
	if err := st.Set(ctx, "k", "sub.field", nil); !store.IsCode(err, store.RetCInvalidValue) {
		t.Errorf("Set(path, nil) = %v, want RetCInvalidValue", err)
	}

	if st.Len() != 0 {
		t.Errorf("Rejected writes changed the store, Len = %d", st.Len())
	}
	if calls := table.Calls(); calls.Append != 0 || calls.Update != 0 {
		t.Errorf("Rejected writes produced remote traffic: %+v", calls)
	}

	// nil inside a structure is a legal value
	if err := st.Set(ctx, "k", "", map[string]any{"empty": nil}); err != nil {
		t.Errorf("Set with nested nil failed: %v", err)
	}
}

func testOpenOnce(t *testing.T, factory StoreFactory) {
	// repeated and concurrent opens share one hydration
	st, table := factory(t, defaultSeed())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.Open(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Concurrent Open %d failed: %v", i, err)
		}
	}
	if err := st.Open(context.Background()); err != nil {
		t.Errorf("Repeated Open failed: %v", err)
	}
	if calls := table.Calls(); calls.Fetch != 1 {
		t.Errorf("Expected exactly one hydration fetch, got %d", calls.Fetch)
	}

	// a failed open is final: no retry, never ready
	st, table = factory(t, defaultSeed())
	table.FailNext(errors.New("boom"))

	if err := st.Open(context.Background()); err == nil {
		t.Fatalf("Open succeeded despite remote failure")
	}
	if st.Ready() {
		t.Errorf("Store reports ready after failed Open")
	}
	if err := st.Open(context.Background()); err == nil {
		t.Errorf("Second Open succeeded, want the sticky failure")
	}
	if calls := table.Calls(); calls.Fetch != 1 {
		t.Errorf("Failed Open was retried, fetch count %d", calls.Fetch)
	}
	if _, _, err := st.Get("a", ""); !store.IsCode(err, store.RetCNotReady) {
		t.Errorf("Get after failed Open = %v, want RetCNotReady", err)
	}
}

func testReplicationFailure(t *testing.T, factory StoreFactory) {
	st, table := factory(t, emptySeed())
	mustOpen(t, st)
	ctx := context.Background()

	// a failed append leaves the value cached but not mirrored
	table.FailNext(errors.New("boom"))
	err := st.Set(ctx, "k", "", float64(1))
	if !store.IsCode(err, store.RetCInternalError) {
		t.Fatalf("Set with failing remote = %v, want RetCInternalError", err)
	}
	if got := mustGet(t, st, "k", ""); got != float64(1) {
		t.Errorf("Cache not updated before replication: %#v", got)
	}
	if st.Len() != 0 {
		t.Errorf("Failed append entered the index, Len = %d", st.Len())
	}

	// the next write retries the append and heals the divergence
	if err := st.Set(ctx, "k", "", float64(2)); err != nil {
		t.Fatalf("Healing Set failed: %v", err)
	}
	if calls := table.Calls(); calls.Append != 2 || calls.Update != 0 {
		t.Errorf("Expected the retry to append, got %+v", calls)
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d after healed write, want 1", st.Len())
	}
	assertMirror(t, st, table)

	// a failed cell update keeps the row and the new cached value
	table.FailNext(errors.New("boom"))
	if err := st.Set(ctx, "k", "", float64(3)); !store.IsCode(err, store.RetCInternalError) {
		t.Fatalf("Set with failing update = %v, want RetCInternalError", err)
	}
	if got := mustGet(t, st, "k", ""); got != float64(3) {
		t.Errorf("Cache lost the value of the failed update: %#v", got)
	}
	if err := st.Set(ctx, "k", "", float64(4)); err != nil {
		t.Fatalf("Set after failed update: %v", err)
	}
	assertMirror(t, st, table)

	// a failed row deletion leaves the mirror untouched
	table.FailNext(errors.New("boom"))
	if err := st.Delete(ctx, "k", ""); !store.IsCode(err, store.RetCInternalError) {
		t.Fatalf("Delete with failing remote = %v, want RetCInternalError", err)
	}
	if st.Len() != 1 {
		t.Errorf("Failed Delete changed the index, Len = %d", st.Len())
	}
	if _, found, _ := st.Get("k", ""); !found {
		t.Errorf("Failed Delete dropped the cached value")
	}
	assertMirror(t, st, table)

	// a cache-only entry (failed append) deletes without remote traffic
	table.FailNext(errors.New("boom"))
	_ = st.Set(ctx, "stray", "", float64(9))
	deletesBefore := table.Calls().Delete
	if err := st.Delete(ctx, "stray", ""); err != nil {
		t.Fatalf("Delete of unmirrored entry failed: %v", err)
	}
	if _, found, _ := st.Get("stray", ""); found {
		t.Errorf("Unmirrored entry still readable after Delete")
	}
	if table.Calls().Delete != deletesBefore {
		t.Errorf("Delete of unmirrored entry touched the remote table")
	}
}

func testConcurrentWrites(t *testing.T, factory StoreFactory) {
	// same key: mutations serialize, exactly one append wins
	st, table := factory(t, emptySeed())
	mustOpen(t, st)
	ctx := context.Background()

	numWriters := 16
	var wg sync.WaitGroup
	wg.Add(numWriters)
	for i := 0; i < numWriters; i++ {
		go func(i int) {
			defer wg.Done()
			if err := st.Set(ctx, "hot", "", float64(i)); err != nil {
				t.Errorf("Concurrent Set failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if st.Len() != 1 {
		t.Errorf("Len = %d after same-key writes, want 1", st.Len())
	}
	if calls := table.Calls(); calls.Append != 1 || calls.Update != numWriters-1 {
		t.Errorf("Expected 1 append and %d updates, got %+v", numWriters-1, calls)
	}
	assertMirror(t, st, table)

	// distinct keys: appends may interleave but rows and index stay aligned
	st, table = factory(t, emptySeed())
	mustOpen(t, st)

	wg.Add(numWriters)
	for i := 0; i < numWriters; i++ {
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			if err := st.Set(ctx, key, "", float64(i)); err != nil {
				t.Errorf("Concurrent Set(%s) failed: %v", key, err)
			}
		}(i)
	}
	wg.Wait()

	if st.Len() != numWriters {
		t.Errorf("Len = %d after distinct-key writes, want %d", st.Len(), numWriters)
	}
	assertMirror(t, st, table)
}
