package codec

import (
	"testing"
)

// benchmarkValues returns a set of values for targeted benchmarking
func benchmarkValues() map[string]any {
	return map[string]any{
		"String": "plain text value",
		"Number": float64(42.5),
		"Flat": map[string]any{
			"host": "box-1",
			"port": float64(631),
			"tls":  true,
		},
		"Nested": map[string]any{
			"name": "job",
			"opts": map[string]any{
				"retries": float64(3),
				"tags":    []any{"a", "b", "c"},
			},
		},
		"LargeSlice": func() any {
			s := make([]any, 256)
			for i := range s {
				s[i] = float64(i)
			}
			return s
		}(),
	}
}

// BenchmarkEncode benchmarks encoding for all implementations with various value shapes
func BenchmarkEncode(b *testing.B) {
	values := benchmarkValues()

	for name, factory := range testCodecs {
		for valName, v := range values {
			b.Run(name+"_"+valName, func(b *testing.B) {
				c := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := c.Encode(v)
					if err != nil {
						b.Fatalf("Failed to encode: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDecode benchmarks decoding for all implementations with various value shapes
func BenchmarkDecode(b *testing.B) {
	values := benchmarkValues()
	encodedText := make(map[string]map[string]string)

	// Pre-encode all values with all codecs
	for name, factory := range testCodecs {
		c := factory()
		encodedText[name] = make(map[string]string)

		for valName, v := range values {
			text, err := c.Encode(v)
			if err != nil {
				b.Fatalf("Failed to encode %s with %s: %v", valName, name, err)
			}
			encodedText[name][valName] = text
		}
	}

	// Benchmark decoding (the plain string is skipped, it has no decodable form)
	for name, factory := range testCodecs {
		for valName := range values {
			if valName == "String" {
				continue
			}
			b.Run(name+"_"+valName, func(b *testing.B) {
				c := factory()
				text := encodedText[name][valName]
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := c.Decode(text)
					if err != nil {
						b.Fatalf("Failed to decode: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSize measures and reports the encoded cell size for each value shape
func BenchmarkSize(b *testing.B) {
	values := benchmarkValues()

	for name, factory := range testCodecs {
		c := factory()

		for valName, v := range values {
			b.Run(name+"_"+valName, func(b *testing.B) {
				text, err := c.Encode(v)
				if err != nil {
					b.Fatalf("Failed to encode: %v", err)
				}

				// Report the size as a custom metric
				b.ReportMetric(float64(len(text)), "bytes")

				// Minimal loop to satisfy benchmark requirements
				for i := 0; i < b.N; i++ {
					_ = text
				}
			})
		}
	}
}
