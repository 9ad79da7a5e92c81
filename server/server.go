// Package server implements the one-shot counterpart of the client channel:
// each accepted connection carries exactly one request, one response, and a
// close handshake.
//
// Connection lifecycle:
//
//	Accept conn → handleConn (own goroutine)
//	  → read Request frame → reflect-dispatch → write Response frame
//	  → wait for the client's Close frame → close conn
//
// A handler error is NOT a server failure: it travels back in the response
// envelope's fault detail, where the client channel surfaces it as a
// protocol fault.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"oneshot-rpc/codec"
	"oneshot-rpc/message"
	"oneshot-rpc/protocol"
	"oneshot-rpc/registry"
)

// Server accepts one-shot connections and dispatches their single call to a
// registered service.
type Server struct {
	services      map[string]*service // "Arith" → *service
	listener      net.Listener
	wg            sync.WaitGroup // tracks in-flight connections for graceful shutdown
	shutdown      atomic.Bool    // distinguishes intentional listener close from real Accept errors
	logger        *zap.Logger
	registry      registry.Registry // nil when discovery is not used
	advertiseAddr string            // routable address registered in the registry
}

// NewServer creates a server with no registered services.
// A nil logger disables logging.
func NewServer(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		services: make(map[string]*service),
		logger:   logger,
	}
}

// Register exposes a receiver's RPC-shaped methods (e.g. &Arith{}) to
// remote callers under the receiver's type name.
func (svr *Server) Register(rcvr any) error {
	svc, err := newService(rcvr)
	if err != nil {
		return err
	}
	svr.services[svc.name] = svc
	return nil
}

// Serve listens on address and enters the accept loop, one goroutine per
// connection.
//
// advertiseAddr is the address registered in the registry — it differs from
// the listen address because ":8080" is not routable for dialers. Pass a nil
// registry to skip discovery.
func (svr *Server) Serve(network, address, advertiseAddr string, reg registry.Registry) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	svr.listener = listener

	svr.advertiseAddr = advertiseAddr
	if reg != nil {
		svr.registry = reg
		for serviceName := range svr.services {
			err := reg.Register(context.Background(), serviceName, registry.ServiceInstance{
				Addr: advertiseAddr,
			}, 10) // TTL = 10s, KeepAlive renews in the background
			if err != nil {
				svr.logger.Warn("registry registration failed",
					zap.String("service", serviceName), zap.Error(err))
			}
		}
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if svr.shutdown.Load() {
				return nil
			}
			return err
		}
		go svr.handleConn(conn)
	}
}

// handleConn serves one connection's entire lifetime: single request,
// single response, close handshake.
func (svr *Server) handleConn(conn net.Conn) {
	svr.wg.Add(1)
	defer svr.wg.Done()
	defer conn.Close()

	header, body, err := protocol.Decode(conn)
	if err != nil {
		return // connection closed or garbage on the wire
	}
	switch header.MsgType {
	case protocol.MsgTypeClose:
		return // client gave up before calling
	case protocol.MsgTypeRequest:
	default:
		svr.logger.Warn("unexpected first frame", zap.Uint8("msgType", uint8(header.MsgType)))
		return
	}

	cdc := codec.GetCodec(codec.CodecType(header.CodecType))
	req := message.CallMessage{}
	if err := cdc.Decode(body, &req); err != nil {
		svr.logger.Warn("request decode failed", zap.Error(err))
		return
	}

	resp := svr.dispatch(&req)
	respBody, err := cdc.Encode(resp)
	if err != nil {
		svr.logger.Error("response encode failed", zap.String("method", req.Method), zap.Error(err))
		return
	}
	respHeader := protocol.Header{
		CodecType: header.CodecType,
		MsgType:   protocol.MsgTypeResponse,
		BodyLen:   uint32(len(respBody)),
	}
	if err := protocol.Encode(conn, &respHeader, respBody); err != nil {
		svr.logger.Warn("response write failed", zap.String("method", req.Method), zap.Error(err))
		return
	}

	// Close handshake: the client either sends a Close frame (graceful) or
	// just drops the connection (abort). Either way we are done; the
	// deferred conn.Close sends our FIN, which is the client's ack.
	protocol.Decode(conn)
}

// dispatch routes the request to the registered service method.
// Any failure — unknown method, bad payload, handler error — comes back as
// a fault detail in the response rather than a dropped connection.
func (svr *Server) dispatch(req *message.CallMessage) *message.CallMessage {
	split := strings.Split(req.Method, ".")
	if len(split) != 2 {
		return faultResponse(req, fmt.Sprintf("invalid method format: %q", req.Method))
	}
	svc, ok := svr.services[split[0]]
	if !ok {
		return faultResponse(req, fmt.Sprintf("unknown service: %q", split[0]))
	}
	mt, ok := svc.method[split[1]]
	if !ok {
		return faultResponse(req, fmt.Sprintf("unknown method: %q", req.Method))
	}

	argv := reflect.New(mt.ArgType)
	replyv := reflect.New(mt.ReplyType)
	if err := json.Unmarshal(req.Payload, argv.Interface()); err != nil {
		return faultResponse(req, fmt.Sprintf("bad request payload: %v", err))
	}

	if err := svc.call(mt, argv, replyv); err != nil {
		return faultResponse(req, err.Error())
	}

	payload, err := json.Marshal(replyv.Interface())
	if err != nil {
		return faultResponse(req, fmt.Sprintf("reply marshal failed: %v", err))
	}
	return &message.CallMessage{
		Method:  req.Method,
		Payload: payload,
	}
}

func faultResponse(req *message.CallMessage, detail string) *message.CallMessage {
	return &message.CallMessage{
		Method:      req.Method,
		FaultDetail: detail,
	}
}

// Shutdown stops the server gracefully:
//  1. Deregister from the registry so dialers stop routing here
//  2. Set the shutdown flag, then close the listener
//  3. Wait for in-flight connections, bounded by timeout
func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.registry != nil {
		for serviceName := range svr.services {
			if err := svr.registry.Deregister(context.Background(), serviceName, svr.advertiseAddr); err != nil {
				svr.logger.Warn("deregister failed", zap.String("service", serviceName), zap.Error(err))
			}
		}
	}

	// Flag before close: otherwise the Accept error races the flag and
	// Serve returns a spurious error.
	svr.shutdown.Store(true)
	svr.listener.Close()

	done := make(chan struct{})
	go func() {
		svr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for in-flight connections to finish")
	}
}
