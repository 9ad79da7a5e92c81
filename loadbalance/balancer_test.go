package loadbalance

import (
	"testing"

	"oneshot-rpc/registry"
)

func instances(addrs ...string) []registry.ServiceInstance {
	out := make([]registry.ServiceInstance, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, registry.ServiceInstance{Addr: addr, Weight: 1})
	}
	return out
}

func TestRoundRobinCycles(t *testing.T) {
	b := &RoundRobinBalancer{}
	list := instances("a:1", "b:1", "c:1")

	seen := make(map[string]int)
	for i := 0; i < 9; i++ {
		inst, err := b.Pick(list)
		if err != nil {
			t.Fatal(err)
		}
		seen[inst.Addr]++
	}
	for _, addr := range []string{"a:1", "b:1", "c:1"} {
		if seen[addr] != 3 {
			t.Fatalf("expect each instance picked 3 times, got %v", seen)
		}
	}
}

func TestRoundRobinEmpty(t *testing.T) {
	b := &RoundRobinBalancer{}
	if _, err := b.Pick(nil); err == nil {
		t.Fatal("expect error on empty instance list")
	}
}

func TestWeightedRandomRespectsWeights(t *testing.T) {
	b := &WeightedRandomBalancer{}
	list := []registry.ServiceInstance{
		{Addr: "heavy:1", Weight: 100},
		{Addr: "light:1", Weight: 1},
	}

	heavy := 0
	for i := 0; i < 1000; i++ {
		inst, err := b.Pick(list)
		if err != nil {
			t.Fatal(err)
		}
		if inst.Addr == "heavy:1" {
			heavy++
		}
	}
	// ~99% expected; 900 leaves ample slack against flakes.
	if heavy < 900 {
		t.Fatalf("expect the heavy instance to dominate, got %d/1000", heavy)
	}
}

func TestWeightedRandomZeroWeights(t *testing.T) {
	b := &WeightedRandomBalancer{}
	list := []registry.ServiceInstance{
		{Addr: "a:1", Weight: 0},
		{Addr: "b:1", Weight: 0},
	}

	// Must not panic or error: falls back to a uniform pick.
	for i := 0; i < 10; i++ {
		if _, err := b.Pick(list); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWeightedRandomEmpty(t *testing.T) {
	b := &WeightedRandomBalancer{}
	if _, err := b.Pick(nil); err == nil {
		t.Fatal("expect error on empty instance list")
	}
}
