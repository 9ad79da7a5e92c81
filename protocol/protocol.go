// Package protocol implements the binary frame format for one-shot channels.
//
// A fixed 10-byte header precedes a variable-length body. The receiver reads
// the header first to learn the body length, then reads exactly that many
// bytes — this is what delimits frames on a TCP byte stream.
//
// Frame format:
//
//	0      3  4  5  6         10
//	┌──────┬──┬──┬──┬─────────┬───────────────┐
//	│magic │v │ct│mt│ bodyLen │    body ...   │
//	│ osr  │01│  │  │ uint32  │ bodyLen bytes │
//	└──────┴──┴──┴──┴─────────┴───────────────┘
//
// There is no sequence number: a channel carries exactly one request and one
// response, so there is nothing to correlate.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic number bytes: "osr" (one-shot rpc).
// Lets the receiver reject non-protocol connections immediately.
const (
	MagicByte1 byte = 0x6f // 'o'
	MagicByte2 byte = 0x73 // 's'
	MagicByte3 byte = 0x72 // 'r'
	Version    byte = 0x01
	HeaderSize int  = 10 // 3 (magic) + 1 (version) + 1 (codec) + 1 (msgType) + 4 (bodyLen)
)

// MsgType distinguishes the three frame kinds a channel exchanges.
type MsgType byte

const (
	MsgTypeRequest  MsgType = 0 // Client → Server: the channel's single call
	MsgTypeResponse MsgType = 1 // Server → Client: the call's result
	MsgTypeClose    MsgType = 2 // Client → Server: graceful shutdown (no body)
)

// Codec type constants, mirrored from codec package to avoid a circular import.
const (
	CodecTypeJSON   byte = 0
	CodecTypeBinary byte = 1
)

// Header is the fixed 10-byte frame header.
type Header struct {
	CodecType byte    // Serialization format: 0=JSON, 1=Binary
	MsgType   MsgType // Request, Response, or Close
	BodyLen   uint32  // Body length in bytes
}

// Encode writes a complete frame (header + body) to w.
// body may be nil for Close frames.
func Encode(w io.Writer, h *Header, body []byte) error {
	buf := make([]byte, HeaderSize)

	copy(buf[0:3], []byte{MagicByte1, MagicByte2, MagicByte3})
	buf[3] = Version
	buf[4] = h.CodecType
	buf[5] = byte(h.MsgType)
	// Body length: 4 bytes, big-endian (network byte order)
	binary.BigEndian.PutUint32(buf[6:10], h.BodyLen)

	if _, err := w.Write(buf); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return nil
}

// Decode reads a complete frame from r, validating magic, version, codec
// type, and message type. io.ReadFull guarantees exactly N bytes per read,
// so partial TCP reads never surface as truncated frames.
func Decode(r io.Reader) (*Header, []byte, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, nil, err
	}

	if headerBuf[0] != MagicByte1 || headerBuf[1] != MagicByte2 || headerBuf[2] != MagicByte3 {
		return nil, nil, fmt.Errorf("invalid magic number: %x", headerBuf[0:3])
	}
	if headerBuf[3] != Version {
		return nil, nil, fmt.Errorf("unsupported version: %d", headerBuf[3])
	}
	if headerBuf[4] != CodecTypeJSON && headerBuf[4] != CodecTypeBinary {
		return nil, nil, fmt.Errorf("unsupported codec type: %d", headerBuf[4])
	}
	msgType := headerBuf[5]
	if msgType > byte(MsgTypeClose) {
		return nil, nil, fmt.Errorf("unsupported message type: %d", msgType)
	}

	bodyLen := binary.BigEndian.Uint32(headerBuf[6:10])
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}

	return &Header{
		CodecType: headerBuf[4],
		MsgType:   MsgType(msgType),
		BodyLen:   bodyLen,
	}, body, nil
}
