// Package channel implements the single-use client channel: one TCP
// connection, one call, then a graceful close or a hard abort.
//
// A Channel satisfies executor.Handle. Lifecycle:
//
//	created ──Call──→ in-use ──Close──→ closed
//	                        └─Abort──→ aborted
//
// Both terminal states are final; a consumed channel can never be reused.
// Channels are not goroutine-safe — each one is exclusively owned by the
// invocation that created it.
package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"oneshot-rpc/codec"
	"oneshot-rpc/fault"
	"oneshot-rpc/message"
	"oneshot-rpc/protocol"
)

type state int

const (
	stateCreated state = iota
	stateInUse
	stateClosed
	stateAborted
)

// Channel is a single-use client channel bound to one remote endpoint.
type Channel struct {
	conn        net.Conn
	codecType   codec.CodecType
	callTimeout time.Duration
	state       state
}

// New wraps an established connection in a channel. The channel takes
// ownership of conn and will close it during Close or Abort.
func New(conn net.Conn, codecType codec.CodecType) *Channel {
	return &Channel{
		conn:      conn,
		codecType: codecType,
	}
}

// SetCallTimeout bounds the next Call with a connection deadline.
// A deadline that elapses mid-call surfaces as a Timeout fault.
func (c *Channel) SetCallTimeout(timeout time.Duration) {
	c.callTimeout = timeout
}

// Call performs the channel's single request/response exchange.
// Failures are categorized:
//   - the response carries a fault detail  → ProtocolFault
//   - read/write or framing error         → TransportFailure
//   - connection deadline elapsed         → Timeout
//
// Serialization errors on the caller's own args or reply are local bugs,
// not channel failures, and stay uncategorized.
func (c *Channel) Call(method string, args any, reply any) error {
	if c.state != stateCreated {
		return fault.Transport(errors.New("channel already consumed"))
	}
	c.state = stateInUse

	if c.callTimeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.callTimeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	payload, err := json.Marshal(args)
	if err != nil {
		return err
	}
	cdc := codec.GetCodec(c.codecType)
	body, err := cdc.Encode(&message.CallMessage{
		Method:  method,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	reqHeader := protocol.Header{
		CodecType: byte(c.codecType),
		MsgType:   protocol.MsgTypeRequest,
		BodyLen:   uint32(len(body)),
	}
	if err := protocol.Encode(c.conn, &reqHeader, body); err != nil {
		return classify(err)
	}

	respHeader, respBody, err := protocol.Decode(c.conn)
	if err != nil {
		return classify(err)
	}
	if respHeader.MsgType != protocol.MsgTypeResponse {
		return fault.Protocol(fmt.Sprintf("unexpected frame type %d in response", respHeader.MsgType))
	}

	resp := message.CallMessage{}
	if err := codec.GetCodec(codec.CodecType(respHeader.CodecType)).Decode(respBody, &resp); err != nil {
		return fault.Transport(err)
	}
	if resp.FaultDetail != "" {
		return fault.Protocol(resp.FaultDetail)
	}

	if reply == nil {
		return nil
	}
	return json.Unmarshal(resp.Payload, reply)
}

// Close performs the graceful shutdown handshake: send a Close frame, wait
// for the peer to finish and close its side, then release the connection.
func (c *Channel) Close() error {
	return c.close(time.Time{})
}

// CloseWithTimeout is Close bounded by a connection deadline. If the peer
// does not complete the handshake in time, the deadline error is returned.
func (c *Channel) CloseWithTimeout(timeout time.Duration) error {
	return c.close(time.Now().Add(timeout))
}

func (c *Channel) close(deadline time.Time) error {
	if c.state == stateClosed || c.state == stateAborted {
		return errors.New("channel already torn down")
	}
	if !deadline.IsZero() {
		c.conn.SetDeadline(deadline)
	}

	closeHeader := protocol.Header{MsgType: protocol.MsgTypeClose}
	if err := protocol.Encode(c.conn, &closeHeader, nil); err != nil {
		c.conn.Close()
		return err
	}

	// Wait for the peer's EOF — that is its acknowledgement that the
	// connection drained cleanly. An unexpected frame here is tolerated;
	// the connection is going away either way.
	if _, _, err := protocol.Decode(c.conn); err != nil && err != io.EOF {
		c.conn.Close()
		return err
	}

	c.state = stateClosed
	return c.conn.Close()
}

// Abort discards the channel: no handshake, no draining. The connection is
// hard-closed with linger disabled so in-flight data is dropped rather than
// flushed. Abort never fails and is safe to call after a failed Call.
func (c *Channel) Abort() {
	if c.state == stateClosed || c.state == stateAborted {
		return
	}
	c.state = stateAborted
	if tcp, ok := c.conn.(*net.TCPConn); ok {
		tcp.SetLinger(0)
	}
	c.conn.Close()
}

// classify maps a connection-level error to its failure category.
func classify(err error) *fault.Error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fault.TimedOut(err)
	}
	return fault.Transport(err)
}
