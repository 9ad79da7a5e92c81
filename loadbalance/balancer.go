// Package loadbalance selects which service instance a dialer connects to.
//
// Because every call gets its own channel, the balancer runs once per dial —
// there is no sticky connection to rebalance around.
package loadbalance

import "oneshot-rpc/registry"

// Balancer picks one instance from the list the registry returned.
// Pick runs on every dial and must be goroutine-safe.
type Balancer interface {
	Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
