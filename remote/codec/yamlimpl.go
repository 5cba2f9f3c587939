package codec

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// NewYAMLCodec creates a new cell codec using yaml encoding
func NewYAMLCodec() ICellCodec {
	return &yamlCodecImpl{}
}

// yamlCodecImpl implements the ICellCodec interface using yaml encoding.
// Decoded values are normalized into the JSON-family types, so values
// round-trip identically through the json and yaml codecs.
type yamlCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICellCodec)
// --------------------------------------------------------------------------

func (y yamlCodecImpl) Encode(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	// Marshal terminates the document with a newline that has no place in a cell
	return strings.TrimRight(string(b), "\n"), nil
}

func (y yamlCodecImpl) Decode(s string) (any, error) {
	// An empty cell is empty text, not a YAML null document
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("codec: empty cell")
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// normalize converts the YAML decoder's native types (int keys and values,
// general maps, timestamps) into the JSON-family types.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalize(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalize(child)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	default:
		return v
	}
}
