package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	body := []byte(`{"Method":"Arith.Add"}`)
	header := Header{
		CodecType: CodecTypeJSON,
		MsgType:   MsgTypeRequest,
		BodyLen:   uint32(len(body)),
	}

	buf := &bytes.Buffer{}
	if err := Encode(buf, &header, body); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != HeaderSize+len(body) {
		t.Fatalf("expect %d bytes on the wire, got %d", HeaderSize+len(body), buf.Len())
	}

	got, gotBody, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.CodecType != header.CodecType || got.MsgType != header.MsgType || got.BodyLen != header.BodyLen {
		t.Fatalf("header mismatch: %+v vs %+v", got, header)
	}
	if !bytes.Equal(gotBody, body) {
		t.Fatalf("body mismatch: %q vs %q", gotBody, body)
	}
}

func TestCloseFrameHasNoBody(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, &Header{MsgType: MsgTypeClose}, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != HeaderSize {
		t.Fatalf("close frame must be header-only, got %d bytes", buf.Len())
	}

	header, body, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if header.MsgType != MsgTypeClose || len(body) != 0 {
		t.Fatalf("expect empty close frame, got %+v body=%d", header, len(body))
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte("GET / HTTP/1.1\r\n"))
	if _, _, err := Decode(buf); err == nil {
		t.Fatal("expect rejection of non-protocol bytes")
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	raw := []byte{MagicByte1, MagicByte2, MagicByte3, 0x7f, 0, 0, 0, 0, 0, 0}
	if _, _, err := Decode(bytes.NewBuffer(raw)); err == nil {
		t.Fatal("expect rejection of unknown version")
	}
}

func TestDecodeRejectsBadMsgType(t *testing.T) {
	raw := []byte{MagicByte1, MagicByte2, MagicByte3, Version, CodecTypeJSON, 9, 0, 0, 0, 0}
	if _, _, err := Decode(bytes.NewBuffer(raw)); err == nil {
		t.Fatal("expect rejection of unknown message type")
	}
}

func TestDecodeTruncatedBody(t *testing.T) {
	buf := &bytes.Buffer{}
	header := Header{CodecType: CodecTypeBinary, MsgType: MsgTypeResponse, BodyLen: 100}
	if err := Encode(buf, &header, []byte("short")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Decode(buf); err == nil {
		t.Fatal("expect error when body is shorter than BodyLen")
	}
}
