// Package codec serializes the call envelope. Two formats are provided:
// JSON (debuggable, cross-language) and a compact hand-rolled binary format.
package codec

type CodecType byte

const (
	CodecTypeJSON   CodecType = 0
	CodecTypeBinary CodecType = 1
)

// Codec encodes and decodes message.CallMessage values.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Type() CodecType
}

// GetCodec returns the codec for the given type byte.
// Unknown types fall back to binary.
func GetCodec(codecType CodecType) Codec {
	switch codecType {
	case CodecTypeJSON:
		return &JSONCodec{}
	default:
		return &BinaryCodec{}
	}
}
