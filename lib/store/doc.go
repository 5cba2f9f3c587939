// Package store provides a high-level interface for key-value storage backed
// by a remote two-column table, with path-based partial updates and unified
// error handling. It serves as an abstraction layer over concrete mirror
// implementations, adding a one-shot readiness lifecycle and standardized
// error reporting.
//
// The package focuses on:
//   - A unified interface (IStore) for spreadsheet-mirrored key-value operations
//   - Typed errors that distinguish misuse from remote failures
//   - A hydration report surfacing rows the mirror could not load
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for
//     interacting with a mirrored key-value store. Reads are served from the
//     in-memory mirror; writes update the mirror first and then replicate to
//     the remote table. Every operation addressing a value accepts an
//     explicit path parameter ("" for the whole value), so callers never
//     rely on argument-count overloading.
//
//   - Error System: A structured error reporting mechanism using typed error
//     codes and descriptive messages. RetCConfig marks invalid construction,
//     RetCInvalidValue and RetCInvalidOperation mark per-call misuse,
//     RetCNotReady marks use before the readiness barrier, and
//     RetCInternalError carries remote or codec failures. IsCode matches
//     codes through wrapped error chains.
//
//   - HydrationReport: Per-row accounting of the initial table load. Rows
//     without a key cell or with a duplicate key are skipped and recorded
//     here instead of being dropped silently.
//
// Implementations:
//
//	The rstore sub-package provides the remote-mirrored implementation: an
//	in-memory cache plus an ordered row index kept consistent with the
//	remote table through write-through replication. It is constructed with
//	an injected table factory, so the remote transport (Google Sheets or the
//	in-process memory table) and the cell codec are chosen by the caller.
//	Available in the "github.com/gridkv/gridkv/lib/store/rstore" package.
//
// This interface-driven approach allows applications to:
//   - Switch between remote backends without code changes
//   - Handle errors in a consistent and type-safe manner across implementations
//   - Test against the in-process backend with identical semantics
package store
