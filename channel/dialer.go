package channel

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/time/rate"

	"oneshot-rpc/codec"
	"oneshot-rpc/loadbalance"
	"oneshot-rpc/registry"
)

// Dialer produces fresh channels for a fixed address. Its New method has the
// factory signature the executor expects, so a Dialer plugs in directly:
//
//	exec := executor.New(dialer.New)
//
// Limiter, when set, bounds the dial rate (token bucket). Running out of
// tokens is a construction failure: the executor propagates it before any
// handle exists.
type Dialer struct {
	Addr        string
	CodecType   codec.CodecType
	DialTimeout time.Duration // 0 = no dial timeout
	CallTimeout time.Duration // 0 = no per-call deadline
	Limiter     *rate.Limiter // nil = unlimited
}

// New dials the configured address and wraps the connection in a channel.
func (d *Dialer) New() (*Channel, error) {
	if d.Limiter != nil && !d.Limiter.Allow() {
		return nil, fmt.Errorf("dial rate exceeded for %s", d.Addr)
	}
	conn, err := net.DialTimeout("tcp", d.Addr, d.DialTimeout)
	if err != nil {
		return nil, err
	}
	ch := New(conn, d.CodecType)
	ch.SetCallTimeout(d.CallTimeout)
	return ch, nil
}

// DiscoveryDialer resolves the target address per dial: it asks the registry
// for the service's live instances and lets the balancer pick one. Every
// channel may therefore land on a different instance.
type DiscoveryDialer struct {
	Service     string
	Registry    registry.Registry
	Balancer    loadbalance.Balancer
	CodecType   codec.CodecType
	DialTimeout time.Duration
	CallTimeout time.Duration
}

// New discovers an instance, dials it, and wraps the connection in a channel.
func (d *DiscoveryDialer) New() (*Channel, error) {
	ctx := context.Background()
	instances, err := d.Registry.Discover(ctx, d.Service)
	if err != nil {
		return nil, err
	}
	instance, err := d.Balancer.Pick(instances)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("tcp", instance.Addr, d.DialTimeout)
	if err != nil {
		return nil, err
	}
	ch := New(conn, d.CodecType)
	ch.SetCallTimeout(d.CallTimeout)
	return ch, nil
}
