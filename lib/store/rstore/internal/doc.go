// Package internal provides the row bookkeeping for the rstore package. It
// maintains the ordered key index that ties every cached entry to the row it
// occupies in the remote sheet.
//
// This package is intended for internal use by the rstore implementation and
// should not be imported directly by external code.
//
// Row Mapping:
//
//	The remote sheet reserves row 1 for the column headers, data starts in
//	row 2. The index therefore never stores row numbers, only positions:
//	the key at position i lives in sheet row i+2. Deleting a key shifts all
//	later keys up by one position, which mirrors the renumbering the sheet
//	applies when a row is removed.
//
// Thread Safety:
//
//	The types in this package are not thread-safe. The rstore implementation
//	guards every index access with its layout lock, which also serializes
//	index changes against the remote writes they mirror.
package internal
