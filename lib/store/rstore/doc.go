// Package rstore implements a remote-mirrored key-value store based on the
// store.IStore interface. Every entry of the store corresponds to one row of
// a two-column remote table: column A holds the key, column B the encoded
// value. Reads are served from an in-memory cache, writes go through the
// cache first and then replicate to the remote table.
//
// Key Features:
//   - Write-through mirror of a remote two-column table
//   - In-memory reads after a one-time hydration, no remote round trips
//   - Path-based partial updates of nested values via the dotpath package
//   - Positional row addressing that survives row deletions
//   - Per-key serialization of mutations for concurrent callers
//
// Implementation Details:
//
//   - Lifecycle: A store instance starts out not ready. Open authorizes the
//     remote client through the injected store.TableFactory, fetches the whole
//     table once and populates the cache and the row index. Open runs at most
//     once; concurrent callers share the first run's outcome and a failed run
//     is final for the instance. All other operations fail with RetCNotReady
//     until Open has succeeded.
//
//   - Row Addressing: The remote table reserves row 1 for the column headers.
//     The store never stores absolute row numbers: the key at index position
//     i lives in row i+2, and every row number is computed from the index at
//     call time. Deleting a row therefore implicitly renumbers all rows below
//     it, locally and remotely in the same step.
//
//   - Replication: A write to an existing key updates the single value cell
//     of its row; a write to a new key appends a row. Whether a key exists is
//     decided by index membership, and the index only records rows the remote
//     table has confirmed. If an append fails, the entry stays cached but
//     unindexed and the next write retries the append.
//
//   - Hydration Report: Rows that cannot be loaded (no key cell, duplicate
//     key) are skipped and recorded. Report exposes the per-row reasons after
//     Open. Cells that fail to decode are not skipped, their raw text is kept
//     as the value.
//
// Thread Safety:
//
//	All operations are thread-safe. Mutations of the same key are serialized
//	through a per-key mutex. Operations that change row positions (append,
//	delete) synchronize with cell updates through a layout lock so that a row
//	number resolved from the index cannot shift while the remote call that
//	uses it is in flight.
//
// Usage Example:
//
//	// Create a store backed by a spreadsheet tab
//	factory := func(ctx context.Context) (remote.ITableClient, error) {
//		return sheets.New(cfg, httpClient, logger)
//	}
//	st, err := rstore.New(rstore.Config{Name: "inventory", Key: "key"}, factory)
//	if err != nil {
//		return err
//	}
//	if err := st.Open(ctx); err != nil {
//		return err
//	}
//
//	// Partial update of a nested value
//	err = st.Set(ctx, "printer", "config.dpi", 600)
//
// The store assumes it is the only writer of the remote table. Rows changed
// by other writers after hydration are not picked up and positional
// addressing may then diverge from the actual table layout.
package rstore
