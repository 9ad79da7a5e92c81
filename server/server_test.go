package server

import (
	"errors"
	"net"
	"testing"
	"time"

	"oneshot-rpc/channel"
	"oneshot-rpc/codec"
	"oneshot-rpc/fault"
)

type Args struct {
	A, B int
}

type Reply struct {
	Result int
}

type Arith struct{}

func (a *Arith) Add(args *Args, reply *Reply) error {
	reply.Result = args.A + args.B
	return nil
}

func (a *Arith) Divide(args *Args, reply *Reply) error {
	if args.B == 0 {
		return errors.New("division by zero")
	}
	reply.Result = args.A / args.B
	return nil
}

type noMethods struct{}

func TestRegisterRejectsBadReceivers(t *testing.T) {
	svr := NewServer(nil)

	if err := svr.Register(Arith{}); err == nil {
		t.Fatal("expect rejection of non-pointer receiver")
	}
	if err := svr.Register(&noMethods{}); err == nil {
		t.Fatal("expect rejection of receiver without RPC-shaped methods")
	}
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
}

func serveArith(t *testing.T) (string, *Server) {
	t.Helper()
	svr := NewServer(nil)
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	go svr.Serve("tcp", addr, addr, nil)
	time.Sleep(100 * time.Millisecond)
	return addr, svr
}

func call(t *testing.T, addr, method string, args *Args) (*Reply, error) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	ch := channel.New(conn, codec.CodecTypeJSON)
	reply := &Reply{}
	callErr := ch.Call(method, args, reply)
	if callErr != nil {
		ch.Abort()
		return nil, callErr
	}
	if err := ch.Close(); err != nil {
		t.Fatal(err)
	}
	return reply, nil
}

func TestDispatch(t *testing.T) {
	addr, svr := serveArith(t)
	defer svr.Shutdown(time.Second)

	reply, err := call(t, addr, "Arith.Add", &Args{A: 7, B: 35})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Result != 42 {
		t.Fatalf("expect 42, got %d", reply.Result)
	}
}

func TestHandlerErrorBecomesFault(t *testing.T) {
	addr, svr := serveArith(t)
	defer svr.Shutdown(time.Second)

	_, err := call(t, addr, "Arith.Divide", &Args{A: 1, B: 0})
	if c, ok := fault.CategoryOf(err); !ok || c != fault.ProtocolFault {
		t.Fatalf("expect ProtocolFault, got %v", err)
	}
	var ferr *fault.Error
	if !errors.As(err, &ferr) || ferr.Detail != "division by zero" {
		t.Fatalf("expect the handler's message as detail, got %v", err)
	}
}

func TestUnknownTargetsBecomeFaults(t *testing.T) {
	addr, svr := serveArith(t)
	defer svr.Shutdown(time.Second)

	for _, method := range []string{"Ghost.Add", "Arith.Ghost", "malformed"} {
		_, err := call(t, addr, method, &Args{})
		if c, ok := fault.CategoryOf(err); !ok || c != fault.ProtocolFault {
			t.Fatalf("method %q: expect ProtocolFault, got %v", method, err)
		}
	}
}

func TestServerSurvivesGarbageBytes(t *testing.T) {
	addr, svr := serveArith(t)
	defer svr.Shutdown(time.Second)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	conn.Close()

	// The server must keep serving after a junk connection.
	reply, err := call(t, addr, "Arith.Add", &Args{A: 2, B: 2})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Result != 4 {
		t.Fatalf("expect 4, got %d", reply.Result)
	}
}

func TestGracefulShutdown(t *testing.T) {
	addr, svr := serveArith(t)

	if _, err := call(t, addr, "Arith.Add", &Args{A: 1, B: 1}); err != nil {
		t.Fatal(err)
	}
	if err := svr.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		t.Fatal("expect the listener to be closed after shutdown")
	}
}
