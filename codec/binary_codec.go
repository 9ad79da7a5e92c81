package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"oneshot-rpc/message"
)

// BinaryCodec encodes a CallMessage as length-prefixed fields:
//
//	2B method len | method | 2B fault len | fault | 4B payload len | payload
//
// All lengths are big-endian.
type BinaryCodec struct{}

func (c *BinaryCodec) Encode(v any) ([]byte, error) {
	msg, ok := v.(*message.CallMessage)
	if !ok {
		return nil, errors.New("BinaryCodec: v must be *CallMessage")
	}

	total := 2 + len(msg.Method) + 2 + len(msg.FaultDetail) + 4 + len(msg.Payload)
	buf := make([]byte, total)

	offset := 0
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(msg.Method)))
	offset += 2
	copy(buf[offset:], msg.Method)
	offset += len(msg.Method)

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(msg.FaultDetail)))
	offset += 2
	copy(buf[offset:], msg.FaultDetail)
	offset += len(msg.FaultDetail)

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(msg.Payload)))
	offset += 4
	copy(buf[offset:], msg.Payload)

	return buf, nil
}

func (c *BinaryCodec) Decode(data []byte, v any) error {
	msg, ok := v.(*message.CallMessage)
	if !ok {
		return errors.New("BinaryCodec: v must be *CallMessage")
	}

	offset := 0
	method, n, err := readString16(data, offset)
	if err != nil {
		return err
	}
	msg.Method = method
	offset = n

	detail, n, err := readString16(data, offset)
	if err != nil {
		return err
	}
	msg.FaultDetail = detail
	offset = n

	if offset+4 > len(data) {
		return fmt.Errorf("BinaryCodec: truncated payload length at offset %d", offset)
	}
	payloadLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if offset+payloadLen > len(data) {
		return fmt.Errorf("BinaryCodec: payload length %d exceeds buffer", payloadLen)
	}
	msg.Payload = make([]byte, payloadLen)
	copy(msg.Payload, data[offset:offset+payloadLen])

	return nil
}

// readString16 reads a 2-byte length-prefixed string starting at offset and
// returns it along with the offset past the string.
func readString16(data []byte, offset int) (string, int, error) {
	if offset+2 > len(data) {
		return "", 0, fmt.Errorf("BinaryCodec: truncated string length at offset %d", offset)
	}
	strLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if offset+strLen > len(data) {
		return "", 0, fmt.Errorf("BinaryCodec: string length %d exceeds buffer", strLen)
	}
	return string(data[offset : offset+strLen]), offset + strLen, nil
}

func (c *BinaryCodec) Type() CodecType {
	return CodecTypeBinary
}
