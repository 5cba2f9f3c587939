// Package codec provides cell value serialization for the remote table
// layer. It defines a common interface and multiple implementations for
// converting between structured values and the text persisted in a table
// cell.
//
// The package focuses on:
//   - Providing a consistent interface for different cell text formats
//   - Keeping plain string values human-readable in the table (verbatim passthrough)
//   - Producing values of the JSON-family types regardless of format
//
// Key Components:
//
//   - ICellCodec: Core interface that all codec implementations must satisfy.
//
//   - jsonCodecImpl: Implementation using JSON encoding. The default codec;
//     compact single-line cells, and the format the store's value family is
//     modeled on.
//
//   - yamlCodecImpl: Implementation using YAML encoding. Produces more
//     readable cells for deeply nested values at the cost of multi-line cell
//     text. Decoded values are normalized into the JSON-family types (YAML
//     integers become float64, general maps become string-keyed maps), so a
//     value round-trips identically through either codec.
//
// String Passthrough:
//
//	Both codecs write string values into the cell verbatim instead of
//	quoting them, matching how a person would type text into a table. The
//	cost is intentional type looseness on the way back: a stored "1" reads
//	back as the number 1. Callers needing exact string round-trips must
//	store the value nested inside a structure.
//
// Thread Safety:
//
//	All codec implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	Codecs are typically created once and reused throughout the application:
//
//	  c := codec.NewJSONCodec()
//	  text, err := c.Encode(map[string]any{"x": 1})
//	  // ... write text into a cell ...
//	  v, err := c.Decode(text)
package codec
