package testing

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
)

// RunStoreBenchmarks runs all benchmarks for an IStore implementation.
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory)
		})

		b.Run("GetPath", func(b *testing.B) {
			benchmarkGetPath(b, factory)
		})

		b.Run("Ensure", func(b *testing.B) {
			benchmarkEnsure(b, factory)
		})

		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory)
		})

		b.Run("SetExisting", func(b *testing.B) {
			benchmarkSetExisting(b, factory)
		})

		b.Run("SetPath", func(b *testing.B) {
			benchmarkSetPath(b, factory)
		})

		b.Run("Hydrate", func(b *testing.B) {
			benchmarkHydrate(b, factory)
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// seedRows builds a grid of numKeys scalar rows below the header.
func seedRows(numKeys int) [][]string {
	rows := make([][]string, 0, numKeys+1)
	rows = append(rows, []string{"key", "value"})
	for i := 0; i < numKeys; i++ {
		rows = append(rows, []string{fmt.Sprintf("test-key-%d", i), fmt.Sprintf("%d", i)})
	}
	return rows
}

// seedNestedRows builds a grid of numKeys nested rows below the header.
func seedNestedRows(numKeys int) [][]string {
	rows := make([][]string, 0, numKeys+1)
	rows = append(rows, []string{"key", "value"})
	for i := 0; i < numKeys; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("test-key-%d", i),
			fmt.Sprintf(`{"opts":{"retries":%d,"tags":["a","b"]},"name":"job-%d"}`, i%5, i),
		})
	}
	return rows
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, factory StoreFactory) {
	numKeys := 10000
	st, _ := factory(b, seedRows(numKeys))
	mustOpen(b, st)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			if _, _, err := st.Get(key, ""); err != nil {
				b.Fatalf("Failed to get: %v", err)
			}
			counter++
		}
	})
}

// Parallel benchmarking for Get with a path into nested values
func benchmarkGetPath(b *testing.B, factory StoreFactory) {
	numKeys := 10000
	st, _ := factory(b, seedNestedRows(numKeys))
	mustOpen(b, st)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			if _, _, err := st.Get(key, "opts.retries"); err != nil {
				b.Fatalf("Failed to get: %v", err)
			}
			counter++
		}
	})
}

// Parallel benchmarking for Ensure with a 50% key miss rate
func benchmarkEnsure(b *testing.B, factory StoreFactory) {
	numKeys := 10000
	st, _ := factory(b, seedRows(numKeys))
	mustOpen(b, st)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			// every second lookup misses and falls back to the default
			key := fmt.Sprintf("test-key-%d", counter%(numKeys*2))
			if _, err := st.Ensure(key, "", "fallback"); err != nil {
				b.Fatalf("Failed to ensure: %v", err)
			}
			counter++
		}
	})
}

// Benchmark for Set operation with new keys (row appends)
func benchmarkSet(b *testing.B, factory StoreFactory) {
	st, _ := factory(b, emptySeed())
	mustOpen(b, st)
	ctx := context.Background()

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			key := fmt.Sprintf("test-key-%d", i)
			if err := st.Set(ctx, key, "", float64(i)); err != nil {
				b.Fatalf("Failed to set: %v", err)
			}
		}
	})
}

// Benchmark for Set operation on existing keys (cell updates)
func benchmarkSetExisting(b *testing.B, factory StoreFactory) {
	numKeys := 10000
	st, _ := factory(b, seedRows(numKeys))
	mustOpen(b, st)
	ctx := context.Background()

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			key := fmt.Sprintf("test-key-%d", int(i)%numKeys)
			if err := st.Set(ctx, key, "", float64(i)); err != nil {
				b.Fatalf("Failed to set: %v", err)
			}
		}
	})
}

// Benchmark for partial updates of nested values
func benchmarkSetPath(b *testing.B, factory StoreFactory) {
	numKeys := 10000
	st, _ := factory(b, seedNestedRows(numKeys))
	mustOpen(b, st)
	ctx := context.Background()

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			key := fmt.Sprintf("test-key-%d", int(i)%numKeys)
			if err := st.Set(ctx, key, "opts.retries", float64(i)); err != nil {
				b.Fatalf("Failed to set: %v", err)
			}
		}
	})
}

// Benchmark for the one-time hydration of differently sized tables
func benchmarkHydrate(b *testing.B, factory StoreFactory) {
	for _, numKeys := range []int{100, 1000, 10000} {
		seed := seedNestedRows(numKeys)

		b.Run(fmt.Sprintf("%dRows", numKeys), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				st, _ := factory(b, seed)
				b.StartTimer()

				mustOpen(b, st)
			}
		})
	}
}

// Benchmark for mixed usage patterns (reads dominate)
func benchmarkMixedUsage(b *testing.B, factory StoreFactory) {
	numKeys := 10000
	st, _ := factory(b, seedRows(numKeys))
	mustOpen(b, st)
	ctx := context.Background()

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			key := fmt.Sprintf("test-key-%d", int(i)%numKeys)

			var err error
			switch i % 10 {
			case 0, 1, 2, 3, 4, 5, 6: // Get
				_, _, err = st.Get(key, "")
			case 7, 8: // Set
				err = st.Set(ctx, key, "", float64(i))
			case 9: // Ensure
				_, err = st.Ensure(key, "", "fallback")
			}
			if err != nil {
				b.Fatalf("Operation failed: %v", err)
			}
		}
	})
}
