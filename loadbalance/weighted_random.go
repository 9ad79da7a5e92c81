package loadbalance

import (
	"fmt"
	"math/rand"

	"oneshot-rpc/registry"
)

// WeightedRandomBalancer picks instances with probability proportional to
// their registered weight.
//
// Best for: heterogeneous instances (different CPU/memory).
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances available")
	}

	totalWeight := 0
	for _, instance := range instances {
		totalWeight += instance.Weight
	}
	if totalWeight <= 0 {
		// No usable weights registered: fall back to a uniform pick.
		return &instances[rand.Intn(len(instances))], nil
	}

	r := rand.Intn(totalWeight)
	for i := range instances {
		r -= instances[i].Weight
		if r < 0 {
			return &instances[i], nil
		}
	}
	return nil, fmt.Errorf("unexpected error in weighted random selection")
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
