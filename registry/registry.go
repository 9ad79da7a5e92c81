// Package registry provides service discovery for channel dialers.
package registry

import "context"

// ServiceInstance describes one live endpoint of a service.
type ServiceInstance struct {
	Addr    string
	Weight  int // Weight for load balancing
	Version string
}

// Registry is the discovery contract. Servers register themselves with a
// TTL; dialers call Discover before each dial.
type Registry interface {
	Register(ctx context.Context, serviceName string, instance ServiceInstance, ttl int64) error
	Deregister(ctx context.Context, serviceName string, addr string) error
	Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error)
	Watch(ctx context.Context, serviceName string) <-chan []ServiceInstance
}
