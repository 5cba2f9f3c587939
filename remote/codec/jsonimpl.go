package codec

import (
	"encoding/json"
)

// NewJSONCodec creates a new cell codec using json encoding
func NewJSONCodec() ICellCodec {
	return &jsonCodecImpl{}
}

// jsonCodecImpl implements the ICellCodec interface using json encoding
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICellCodec)
// --------------------------------------------------------------------------

func (j jsonCodecImpl) Encode(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (j jsonCodecImpl) Decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
