package codec

import (
	"reflect"
	"testing"
)

// testCodecs is a map of codec name to factory function
var testCodecs = map[string]func() ICellCodec{
	"JSON": NewJSONCodec,
	"YAML": NewYAMLCodec,
}

// testValues creates a set of values with different shapes. All of them
// must round-trip deep-equal through every codec.
func testValues() map[string]any {
	return map[string]any{
		"Number": float64(42.5),
		"Bool":   true,
		"Null":   nil,
		"Flat": map[string]any{
			"host": "box-1",
			"port": float64(631),
		},
		"Nested": map[string]any{
			"name": "job",
			"opts": map[string]any{
				"retries": float64(3),
				"tags":    []any{"a", "b"},
				"null":    nil,
			},
		},
		"Slice":       []any{float64(1), "two", true, nil},
		"SliceOfMaps": []any{map[string]any{"x": float64(1)}, map[string]any{"x": float64(2)}},
	}
}

// TestCodecRoundTrip tests that values can be encoded and decoded correctly
func TestCodecRoundTrip(t *testing.T) {
	values := testValues()

	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory()

			for valName, v := range values {
				// Encode
				text, err := c.Encode(v)
				if err != nil {
					t.Errorf("Failed to encode %s: %v", valName, err)
					continue
				}

				// Decode
				result, err := c.Decode(text)
				if err != nil {
					t.Errorf("Failed to decode %s (%q): %v", valName, text, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(v, result) {
					t.Errorf("Value %s doesn't match after round trip:\nOriginal: %#v\nResult: %#v",
						valName, v, result)
				}
			}
		})
	}
}

// TestStringPassthrough tests that string values are written verbatim
func TestStringPassthrough(t *testing.T) {
	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory()

			for _, s := range []string{"hello", "1", "true", "with spaces and: colon"} {
				text, err := c.Encode(s)
				if err != nil {
					t.Errorf("Failed to encode %q: %v", s, err)
					continue
				}
				if text != s {
					t.Errorf("Expected passthrough for %q, got %q", s, text)
				}
			}
		})
	}
}

// TestStringTypeDrift documents the intended looseness of the passthrough:
// strings that read as data in the codec's format decode back as that data.
func TestStringTypeDrift(t *testing.T) {
	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory()

			v, err := c.Decode("1")
			if err != nil {
				t.Fatalf("Failed to decode %q: %v", "1", err)
			}
			if v != float64(1) {
				t.Errorf("Expected float64(1) for cell %q, got %#v", "1", v)
			}

			v, err = c.Decode("true")
			if err != nil {
				t.Fatalf("Failed to decode %q: %v", "true", err)
			}
			if v != true {
				t.Errorf("Expected true for cell %q, got %#v", "true", v)
			}
		})
	}
}

// TestDecodeInvalid tests that text outside the codec's format is rejected,
// which is what triggers the caller's raw-string fallback.
func TestDecodeInvalid(t *testing.T) {
	invalid := map[string][]string{
		"JSON": {"", "plain text", "{broken", "[1,", "   "},
		"YAML": {"", "   ", "a: [broken", "{x: "},
	}

	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory()
			for _, text := range invalid[name] {
				if _, err := c.Decode(text); err == nil {
					t.Errorf("Expected decode error for %q, got none", text)
				}
			}
		})
	}
}

// TestYAMLNormalization tests that YAML-native types are converted into the
// JSON value family.
func TestYAMLNormalization(t *testing.T) {
	c := NewYAMLCodec()

	tests := []struct {
		text string
		want any
	}{
		{"x: 1", map[string]any{"x": float64(1)}},
		{"x: 1.5", map[string]any{"x": float64(1.5)}},
		{"- 1\n- 2", []any{float64(1), float64(2)}},
		{"1: one", map[string]any{"1": "one"}},
		{"x:\n  y: -3", map[string]any{"x": map[string]any{"y": float64(-3)}}},
	}

	for _, tc := range tests {
		got, err := c.Decode(tc.text)
		if err != nil {
			t.Errorf("Failed to decode %q: %v", tc.text, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Decode(%q) = %#v, want %#v", tc.text, got, tc.want)
		}
	}
}

// TestYAMLMultilineEncoding tests that nested values encode without the
// trailing document newline.
func TestYAMLMultilineEncoding(t *testing.T) {
	c := NewYAMLCodec()

	text, err := c.Encode(map[string]any{"a": float64(1), "b": "x"})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if len(text) == 0 || text[len(text)-1] == '\n' {
		t.Errorf("Expected trimmed cell text, got %q", text)
	}
}
