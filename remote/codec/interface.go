package codec

// ICellCodec is the interface for all cell value codecs. A codec converts
// between JSON-family values and the text persisted in a table cell.
type ICellCodec interface {
	// Encode serializes a value into cell text. String values pass through
	// verbatim, everything else is rendered in the codec's format. Note that
	// the passthrough makes encoding lossy for strings that read as data in
	// the codec's format ("1", "true"): they decode back as that data.
	Encode(v any) (string, error)
	// Decode parses cell text into a value of the JSON-family types (nil,
	// bool, float64, string, []any, map[string]any). It returns an error
	// when the text is not valid in the codec's format; callers that treat
	// arbitrary cell text fall back to the raw string in that case.
	Decode(s string) (any, error)
}
