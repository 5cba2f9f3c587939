package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridkv/gridkv/remote"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for a key-value store mirrored from a
// remote two-column table. Values are JSON-family data (nil, bool, float64,
// string, []any, map[string]any). The path parameter of the read and write
// operations addresses a sub-field inside a nested value using the
// dotted/bracketed syntax of the dotpath package; the empty path addresses
// the whole value.
//
// All operations except Open fail with RetCNotReady until Open has
// completed successfully.
type IStore interface {
	// Open authorizes the remote connection and hydrates the in-memory
	// mirror from the remote table. It runs at most once per instance:
	// concurrent and repeated calls share the outcome of the first run.
	// A failed Open is final, the instance never becomes ready.
	Open(ctx context.Context) error
	// Ready reports whether Open has completed successfully.
	Ready() bool
	// Get returns the value stored for key, or the sub-value at path when
	// path is non-empty and the stored value is a nested structure. When the
	// stored value is a scalar, a non-empty path is ignored and the scalar
	// is returned. The boolean return value reports whether the key (and,
	// when given, the path) resolved. The returned value is a deep copy.
	Get(key, path string) (value any, found bool, err error)
	// Ensure behaves like Get but returns def when the key is entirely
	// absent. When the key is present and holds a scalar, the scalar is
	// returned even if path or def were supplied.
	Ensure(key, path string, def any) (value any, err error)
	// Set stores value for key, or deep-sets it at path inside the current
	// value when path is non-empty. The in-memory mirror is updated before
	// the remote replication call; when Set returns nil the remote table
	// has accepted the write. A nil value fails with RetCInvalidValue.
	Set(ctx context.Context, key, path string, value any) error
	// Delete removes the key (empty path) or prunes the sub-field at path.
	// A sub-field delete requires the stored value to be a nested structure
	// and replicates as a cell update; a full delete removes the remote row,
	// shifting the rows after it up by one. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key, path string) error
	// DeleteAll removes every key and issues a single bulk remote deletion
	// covering all rows. A store holding no keys performs no remote call.
	DeleteAll(ctx context.Context) error
	// Keys returns a snapshot of all keys in insertion order, which is also
	// the remote row order.
	Keys() []string
	// Len returns the number of stored keys.
	Len() int
	// Report returns the hydration report of the Open run.
	Report() (HydrationReport, error)
}

// TableFactory is a function that creates the remote table client for a
// store. It is called once, inside Open, so the authorization flow it wraps
// runs under the caller's context. Implementations live in the remote
// subpackages (remote/sheets for the spreadsheet backend, remote/memory for
// tests).
type TableFactory func(ctx context.Context) (remote.ITableClient, error)

// --------------------------------------------------------------------------
// Hydration Report
// --------------------------------------------------------------------------

// SkippedRow identifies a remote row that hydration could not turn into a
// store entry.
type SkippedRow struct {
	Row    int    // 1-based remote row number
	Reason string // why the row was skipped
}

// HydrationReport summarizes one hydration run. Rows counts the data rows
// seen (header excluded), Loaded the entries that made it into the store.
type HydrationReport struct {
	Rows    int
	Loaded  int
	Skipped []SkippedRow
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// IsCode reports whether err is a store Error carrying the given code.
func IsCode(err error, code RetCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to a remote or codec error.
	RetCConfig                          // 2: Required construction fields are missing.
	RetCInvalidValue                    // 3: Nil value passed to Set.
	RetCInvalidOperation                // 4: Operation not applicable to the stored value.
	RetCNotReady                        // 5: Store used before Open completed.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCConfig:
		return "Config"
	case RetCInvalidValue:
		return "InvalidValue"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCNotReady:
		return "NotReady"
	default:
		return "Unknown"
	}
}
