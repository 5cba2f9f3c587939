package rstore

import (
	"context"
	"testing"

	"github.com/gridkv/gridkv/lib/store"
	storetesting "github.com/gridkv/gridkv/lib/store/testing"
	"github.com/gridkv/gridkv/remote"
	"github.com/gridkv/gridkv/remote/memory"
)

// newTestStore builds an unopened store wired to a seeded in-memory table.
func newTestStore(t testing.TB, seed [][]string) (store.IStore, *memory.Table) {
	t.Helper()

	table := memory.NewSeeded(seed)
	st, err := New(Config{Name: "test", Key: "key"}, func(ctx context.Context) (remote.ITableClient, error) {
		return table, nil
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return st, table
}

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "RStore", newTestStore)
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "RStore", newTestStore)
}
