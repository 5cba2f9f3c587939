package rstore

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gridkv/gridkv/lib/store"
	"github.com/gridkv/gridkv/remote"
	"github.com/gridkv/gridkv/remote/codec"
	"github.com/gridkv/gridkv/remote/memory"
)

// memoryFactory wraps a table in a store.TableFactory.
func memoryFactory(table *memory.Table) store.TableFactory {
	return func(ctx context.Context) (remote.ITableClient, error) {
		return table, nil
	}
}

// TestNewConfigValidation tests that incomplete configurations are rejected
func TestNewConfigValidation(t *testing.T) {
	factory := memoryFactory(memory.New())

	tests := []struct {
		name    string
		config  Config
		factory store.TableFactory
	}{
		{name: "MissingName", config: Config{Key: "key"}, factory: factory},
		{name: "MissingKeyLabel", config: Config{Name: "test"}, factory: factory},
		{name: "MissingFactory", config: Config{Name: "test", Key: "key"}, factory: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config, tt.factory)
			if !store.IsCode(err, store.RetCConfig) {
				t.Errorf("New() = %v, want RetCConfig", err)
			}
		})
	}

	if _, err := New(Config{Name: "test", Key: "key"}, factory); err != nil {
		t.Errorf("New() with complete config failed: %v", err)
	}
}

// TestOpenFactoryFailure tests that a failing authorization is final
func TestOpenFactoryFailure(t *testing.T) {
	calls := 0
	st, err := New(Config{Name: "test", Key: "key"}, func(ctx context.Context) (remote.ITableClient, error) {
		calls++
		return nil, errors.New("token rejected")
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	openErr := st.Open(context.Background())
	if !store.IsCode(openErr, store.RetCInternalError) {
		t.Fatalf("Open() = %v, want RetCInternalError", openErr)
	}
	if st.Ready() {
		t.Errorf("Store reports ready after failed authorization")
	}

	// the failure sticks, the factory is not consulted again
	if again := st.Open(context.Background()); !errors.Is(again, openErr) {
		t.Errorf("Second Open() = %v, want the first failure", again)
	}
	if calls != 1 {
		t.Errorf("Factory called %d times, want 1", calls)
	}
}

// TestHydrationSkips tests the per-row skip reasons of the report
func TestHydrationSkips(t *testing.T) {
	st, _ := newTestStore(t, [][]string{
		{"key", "value"},
		{"a", "1"},
		{},
		{"", "orphaned value"},
		{"a", "2"},
		{"b", `{"x":1}`},
	})
	if err := st.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	report, err := st.Report()
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}

	if report.Rows != 5 || report.Loaded != 2 {
		t.Errorf("Report = %d rows, %d loaded, want 5 rows, 2 loaded", report.Rows, report.Loaded)
	}

	wantSkips := []struct {
		row    int
		reason string
	}{
		{3, "empty row"},
		{4, "empty key"},
		{5, "duplicate"},
	}
	if len(report.Skipped) != len(wantSkips) {
		t.Fatalf("Skipped = %+v, want %d entries", report.Skipped, len(wantSkips))
	}
	for i, want := range wantSkips {
		got := report.Skipped[i]
		if got.Row != want.row || !strings.Contains(got.Reason, want.reason) {
			t.Errorf("Skipped[%d] = %+v, want row %d with reason containing %q", i, got, want.row, want.reason)
		}
	}

	// the first occurrence of a duplicate key wins
	value, found, err := st.Get("a", "")
	if err != nil || !found || value != float64(1) {
		t.Errorf("Get(a) = %#v, %v, %v, want the first row's value", value, found, err)
	}

	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

// TestHydrationRawFallback tests that undecodable cells hydrate as raw text
func TestHydrationRawFallback(t *testing.T) {
	st, _ := newTestStore(t, [][]string{
		{"key", "value"},
		{"broken", `{"x":`},
		{"plain", "just some text"},
		{"numeric", "42"},
		{"bare"},
	})
	if err := st.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"broken", `{"x":`},
		{"plain", "just some text"},
		{"numeric", float64(42)},
		{"bare", ""},
	}

	for _, tt := range tests {
		value, found, err := st.Get(tt.key, "")
		if err != nil || !found {
			t.Errorf("Get(%q) = found %v, err %v", tt.key, found, err)
			continue
		}
		if !reflect.DeepEqual(value, tt.want) {
			t.Errorf("Get(%q) = %#v, want %#v", tt.key, value, tt.want)
		}
	}

	// fallback rows count as loaded, not skipped
	report, _ := st.Report()
	if report.Loaded != 4 || len(report.Skipped) != 0 {
		t.Errorf("Report = %+v, want 4 loaded and none skipped", report)
	}
}

// TestReportIsolation tests that callers cannot mutate the stored report
func TestReportIsolation(t *testing.T) {
	st, _ := newTestStore(t, [][]string{
		{"key", "value"},
		{"", "orphaned"},
	})
	if err := st.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	report, _ := st.Report()
	if len(report.Skipped) != 1 {
		t.Fatalf("Skipped = %+v, want one entry", report.Skipped)
	}
	report.Skipped[0].Reason = "tampered"

	again, _ := st.Report()
	if again.Skipped[0].Reason == "tampered" {
		t.Errorf("Report() shares its skip slice with callers")
	}
}

// TestYAMLCodec tests a store wired to the YAML cell codec
func TestYAMLCodec(t *testing.T) {
	table := memory.NewSeeded([][]string{
		{"key", "value"},
		{"job", "retries: 3\ntags: [a, b]"},
	})
	st, err := New(Config{Name: "test", Key: "key", Codec: codec.NewYAMLCodec()}, memoryFactory(table))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := st.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	ctx := context.Background()

	want := map[string]any{"retries": float64(3), "tags": []any{"a", "b"}}
	value, found, err := st.Get("job", "")
	if err != nil || !found || !reflect.DeepEqual(value, want) {
		t.Errorf("Get(job) = %#v, %v, %v, want %#v", value, found, err, want)
	}

	if err := st.Set(ctx, "job", "retries", float64(5)); err != nil {
		t.Fatalf("Set(job, retries) failed: %v", err)
	}

	// the remote cell is YAML text now
	cell := table.Rows()[1][1]
	if !strings.Contains(cell, "retries: 5") {
		t.Errorf("Remote cell = %q, want YAML with retries: 5", cell)
	}
}

// TestInvalidPath tests that malformed paths are rejected as invalid operations
func TestInvalidPath(t *testing.T) {
	st, table := newTestStore(t, [][]string{{"key", "value"}})
	if err := st.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	ctx := context.Background()

	for _, path := range []string{"a..b", ".a", "a.", "a[", "a[-1]"} {
		if err := st.Set(ctx, "k", path, float64(1)); !store.IsCode(err, store.RetCInvalidOperation) {
			t.Errorf("Set with path %q = %v, want RetCInvalidOperation", path, err)
		}
	}

	if calls := table.Calls(); calls.Append != 0 || calls.Update != 0 {
		t.Errorf("Rejected paths produced remote traffic: %+v", calls)
	}
}
