package codec

import (
	"encoding/json"
)

// JSONCodec uses encoding/json. Slower and larger on the wire than the
// binary codec, but trivially inspectable with tcpdump.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) Type() CodecType {
	return CodecTypeJSON
}
