// Package sheets implements the remote.ITableClient interface against the
// spreadsheet REST API (v4). One Client is bound to one tab of one document
// and translates the table primitives into API calls:
//
//   - FetchAll: GET values of the whole tab
//   - AppendRow: POST values/{range}:append with RAW input
//   - UpdateCell: PUT values/{cell} with RAW input
//   - DeleteRows: POST :batchUpdate with a DeleteDimension request
//
// Authorization is not handled here: the Client sends every request through
// the HTTP client it was constructed with, which is expected to attach
// credentials (see the auth package). This keeps the transport testable with
// a plain test server.
//
// Transport Behavior:
//
//	Every call respects the caller's context and the configured per-request
//	timeout. Rate-limited (429) and server-side (5xx) failures are retried
//	with exponential backoff and jitter up to the configured attempt count;
//	other API errors surface immediately as *APIError. An optional request
//	rate limit smooths bursts below the API quota.
//
// Row Deletion:
//
//	The values API addresses cells in A1 notation, but deleting rows goes
//	through the batchUpdate API, which addresses the tab by its numeric
//	sheet id. The Client resolves the id from the document metadata on the
//	first deletion and caches it for the rest of its lifetime.
package sheets
