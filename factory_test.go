package acorn

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestFactoryStampsIndependentProviders(t *testing.T) {
	var calls atomic.Int32
	c := NewCollection()
	Register(c, Shared, func() *testLogger {
		calls.Add(1)
		return &testLogger{}
	})
	f := mustBuildFactory(t, c)

	p1 := f.BuildProvider()
	p2 := f.BuildProvider()

	a, _ := Get[*testLogger](p1)
	b, _ := Get[*testLogger](p2)
	if a == b {
		t.Fatal("stamped providers share Shared evaluation state")
	}
	if calls.Load() != 2 {
		t.Fatalf("factory ran %d times, want once per provider", calls.Load())
	}
}

func TestInstanceFixedAtFactoryBuild(t *testing.T) {
	cfg := &testConfig{DSN: "fixed"}
	c := NewCollection()
	RegisterInstance(c, cfg)
	f := mustBuildFactory(t, c)

	for range 3 {
		p := f.BuildProvider()
		got, ok := Get[*testConfig](p)
		if !ok || got != cfg {
			t.Fatalf("Get = %+v, %v; want the factory-build value in every provider", got, ok)
		}
	}
}

func TestInstanceLifetimeFactoryRunsOnceAtBuild(t *testing.T) {
	var calls atomic.Int32
	c := NewCollection()
	Register(c, Instance, func() *testLogger {
		calls.Add(1)
		return &testLogger{}
	})
	f := mustBuildFactory(t, c)

	if calls.Load() != 1 {
		t.Fatalf("instance factory ran %d times at factory build, want 1", calls.Load())
	}

	a, _ := Get[*testLogger](f.BuildProvider())
	b, _ := Get[*testLogger](f.BuildProvider())
	if a != b || calls.Load() != 1 {
		t.Fatal("instance value not shared across stamped providers")
	}
}

func TestHierarchyDelegatesOnLocalMiss(t *testing.T) {
	parentCol := NewCollection()
	Register(parentCol, Shared, func() *testConfig { return &testConfig{DSN: "parent"} })
	parent := mustBuild(t, parentCol)

	// The child graph has no *testConfig registration of its own. Both
	// collections share the parent's strategy so identities line up.
	childCol := NewCollection(WithStrategy(parentCol.strategy))
	registerLogger(childCol, Shared)
	f := mustBuildFactory(t, childCol)
	child := f.BuildProviderWith(parent)

	got, ok := Get[*testConfig](child)
	if !ok || got.DSN != "parent" {
		t.Fatalf("Get via parent = %+v, %v", got, ok)
	}

	// The shared value is owned by the parent: the child observes the same
	// value on every call, and so does the parent itself.
	again, _ := Get[*testConfig](child)
	direct, _ := Get[*testConfig](parent)
	if got != again || got != direct {
		t.Fatal("shared value not identical across the hierarchy")
	}
}

func TestLocalRegistrationShadowsParent(t *testing.T) {
	s := NewRegistryStrategy()
	parentCol := NewCollection(WithStrategy(s))
	Register(parentCol, Shared, func() *testConfig { return &testConfig{DSN: "parent"} })
	parent := mustBuild(t, parentCol)

	childCol := NewCollection(WithStrategy(s))
	Register(childCol, Shared, func() *testConfig { return &testConfig{DSN: "child"} })
	f := mustBuildFactory(t, childCol)
	child := f.BuildProviderWith(parent)

	got, _ := Get[*testConfig](child)
	if got.DSN != "child" {
		t.Fatalf("Get = %q, want the local registration to win", got.DSN)
	}
}

func TestGetAllDelegatesOnLocalMiss(t *testing.T) {
	s := NewRegistryStrategy()
	parentCol := NewCollection(WithStrategy(s))
	Register(parentCol, Transient, func() int { return 1 })
	Register(parentCol, Transient, func() int { return 2 })
	parent := mustBuild(t, parentCol)

	childCol := NewCollection(WithStrategy(s))
	f := mustBuildFactory(t, childCol)
	child := f.BuildProviderWith(parent)

	var all []int
	for v := range GetAll[int](child) {
		all = append(all, v)
	}
	if len(all) != 2 || all[0] != 1 || all[1] != 2 {
		t.Fatalf("GetAll via parent = %v, want [1 2]", all)
	}
}

func TestEagerSharedPrecomputesInTopologicalOrder(t *testing.T) {
	var produced []string
	c := NewCollection()
	RegisterWith(c, Shared, func(d Registered[*testConfig]) *testDatabase {
		produced = append(produced, "db")
		return &testDatabase{Config: d.Value()}
	})
	Register(c, Shared, func() *testConfig {
		produced = append(produced, "config")
		return &testConfig{}
	})

	mustBuild(t, c, WithEagerShared())
	if len(produced) != 2 || produced[0] != "config" || produced[1] != "db" {
		t.Fatalf("production order = %v, want dependencies first at stamp time", produced)
	}
}

func TestFactoryCloseReleasesInstances(t *testing.T) {
	var order []string
	c := NewCollection()
	RegisterInstance(c, &testClosable{Name: "fixed", Order: &order})
	f := mustBuildFactory(t, c)

	if err := f.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(order) != 1 || order[0] != "fixed" {
		t.Fatalf("close order = %v, want the instance value released", order)
	}
}
