package remote

import (
	"context"
)

// --------------------------------------------------------------------------
// Table Client
// --------------------------------------------------------------------------

// ITableClient is the interface for remote table transports. A client is
// bound to exactly one table (one spreadsheet tab or one in-memory grid) at
// construction; rows and columns address cells inside that table.
//
// Rows are numbered from 1, the way the remote service numbers them, so the
// header row is row 1 and the first data row is row 2. Columns are numbered
// from 0 (column A is 0).
type ITableClient interface {
	// FetchAll returns every row of the table, header included, in table
	// order. Trailing empty cells may be omitted from a row.
	FetchAll(ctx context.Context) ([][]string, error)
	// AppendRow appends cells as a new row after the last non-empty row.
	AppendRow(ctx context.Context, cells []string) error
	// UpdateCell overwrites the single cell at (row, col).
	UpdateCell(ctx context.Context, row, col int, value string) error
	// DeleteRows removes the contiguous row range [start, end). The rows
	// below the range shift up to close the gap.
	DeleteRows(ctx context.Context, start, end int) error
	// Close releases the client's connections. The client must not be used
	// afterwards.
	Close() error
}
