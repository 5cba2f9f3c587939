// Package cmd implements the command-line interface for the gridKV
// spreadsheet-backed key-value store. It provides a hierarchical command
// structure for working with a store from the terminal.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, delete, etc.)
//   - auth: Commands for managing the stored authorization
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See gridkv -help for a list of all commands.
package cmd
