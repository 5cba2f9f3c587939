// Package memory provides an in-memory implementation of the
// remote.ITableClient interface.
//
// The package is meant for tests and local experiments: it keeps the whole
// grid in a slice, applies the same row/column addressing rules as the real
// spreadsheet backend and records every call so tests can assert on the
// remote traffic a store produced. Failures can be injected with FailNext.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridkv/gridkv/remote"
)

// Counters holds per-operation call counts for a Table.
type Counters struct {
	Fetch  int
	Append int
	Update int
	Delete int
}

// Table is an in-memory implementation of remote.ITableClient. It stores the
// grid as a plain [][]string with row 1 as the header and records every call
// for test introspection.
//
// Thread-safety: all methods are safe for concurrent use.
type Table struct {
	mu sync.Mutex

	rows          [][]string
	counters      Counters
	deletedRanges [][2]int

	failNext error
	closed   bool
}

// New creates an empty Table holding only the default header row.
func New() *Table {
	return NewSeeded([][]string{{"key", "value"}})
}

// NewSeeded creates a Table pre-populated with the given grid. The first row
// is the header. The rows are copied, the caller keeps ownership of the input.
func NewSeeded(rows [][]string) *Table {
	t := &Table{rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		t.rows = append(t.rows, append([]string(nil), row...))
	}
	return t
}

// --- Interface Methods (docu see remote.ITableClient) ---------------------

func (t *Table) FetchAll(ctx context.Context) ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counters.Fetch++
	if err := t.checkCall(ctx); err != nil {
		return nil, err
	}
	return t.snapshot(), nil
}

func (t *Table) AppendRow(ctx context.Context, cells []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counters.Append++
	if err := t.checkCall(ctx); err != nil {
		return err
	}
	t.rows = append(t.rows, append([]string(nil), cells...))
	return nil
}

func (t *Table) UpdateCell(ctx context.Context, row, col int, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counters.Update++
	if err := t.checkCall(ctx); err != nil {
		return err
	}
	if row < 1 || row > len(t.rows) {
		return fmt.Errorf("memory: update of row %d outside table of %d rows", row, len(t.rows))
	}
	if col < 0 {
		return fmt.Errorf("memory: update of negative column %d", col)
	}

	// a real sheet accepts writes right of the last cell, grow the row
	cells := t.rows[row-1]
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	t.rows[row-1] = cells
	return nil
}

func (t *Table) DeleteRows(ctx context.Context, start, end int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counters.Delete++
	if err := t.checkCall(ctx); err != nil {
		return err
	}
	if start < 1 || end < start || end > len(t.rows)+1 {
		return fmt.Errorf("memory: delete range [%d,%d) outside table of %d rows", start, end, len(t.rows))
	}

	t.deletedRanges = append(t.deletedRanges, [2]int{start, end})
	t.rows = append(t.rows[:start-1], t.rows[end-1:]...)
	return nil
}

func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return nil
}

// --- Test Introspection ---------------------------------------------------

// Rows returns a deep copy of the current grid, header row included.
func (t *Table) Rows() [][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// Calls returns the per-operation call counts so far.
func (t *Table) Calls() Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// DeletedRanges returns every [start,end) row range passed to DeleteRows,
// in call order.
func (t *Table) DeletedRanges() [][2]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][2]int(nil), t.deletedRanges...)
}

// Closed reports whether Close has been called.
func (t *Table) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// FailNext arranges for the next remote call to return err instead of
// touching the grid. The call still counts towards Calls.
func (t *Table) FailNext(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failNext = err
}

// --- Helper Methods -------------------------------------------------------

// checkCall consumes an injected failure and honors context cancellation.
// Must be called with t.mu held.
func (t *Table) checkCall(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.closed {
		return fmt.Errorf("memory: table is closed")
	}
	if err := t.failNext; err != nil {
		t.failNext = nil
		return err
	}
	return nil
}

// snapshot deep-copies the grid. Must be called with t.mu held.
func (t *Table) snapshot() [][]string {
	rows := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, append([]string(nil), row...))
	}
	return rows
}

// ensure interface compliance
var _ remote.ITableClient = (*Table)(nil)
