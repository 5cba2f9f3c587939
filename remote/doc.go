// Package remote provides the transport layer between the key-value store
// and its backing table. It defines the table client abstraction the store
// replicates through, so the same store logic runs against a real
// spreadsheet or an in-process grid.
//
// The package is organized into several subpackages:
//
//   - sheets: Google Sheets implementation of the table client, a REST
//     client with request retry, rate limiting and typed API errors.
//
//   - memory: In-process implementation holding the grid in memory, used by
//     tests, the conformance suite and the CLI's local backend.
//
//   - codec: Cell value codecs (JSON, YAML) for converting between
//     structured values and the text stored in a table cell.
//
//   - auth: OAuth2 authorization producing the authorized HTTP client the
//     sheets transport runs on, including the interactive code exchange and
//     token persistence.
//
// The root package itself holds the ITableClient interface and the
// TableConfig shared by the implementations.
package remote
