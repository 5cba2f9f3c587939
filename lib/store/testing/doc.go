// Package testing provides standardised tests and benchmarks for store
// implementations that satisfy the store.IStore interface.
//
// The package contains:
//   - testing: A conformance suite validating the IStore contract, including
//     hydration, write-through replication, positional row addressing and the
//     failure semantics of a diverged mirror
//   - benchmark: Performance tests for measuring throughput of common store
//     operations against an in-memory remote table
//
// Every test drives the store against a memory.Table seeded through the
// factory, so the suite can assert not only on what the store returns but
// also on the remote traffic it produced (call counts, deleted row ranges,
// final grid layout).
//
// Example usage:
//
//	factory := func(t testing.TB, seed [][]string) (store.IStore, *memory.Table) {
//		table := memory.NewSeeded(seed)
//		st, err := rstore.New(rstore.Config{Name: "test", Key: "key"},
//			func(ctx context.Context) (remote.ITableClient, error) { return table, nil })
//		if err != nil {
//			t.Fatalf("failed to create store: %v", err)
//		}
//		return st, table
//	}
//
//	// Running the standard test suite
//	storetesting.RunStoreTests(t, "RStore", factory)
//
//	// Running performance benchmarks
//	storetesting.RunStoreBenchmarks(b, "RStore", factory)
package testing
