package acorn

import (
	"errors"
	"testing"
)

// The tests in this file assemble small end-to-end graphs the way a host
// composed of independent registrants would.

func TestComposeValueFromSingleDependency(t *testing.T) {
	c := NewCollection()
	Register(c, Transient, func() uint8 { return 1 })
	RegisterWith(c, Transient, func(d Registered[uint8]) int16 {
		return int16(d.Value()) * 2
	})

	p := mustBuild(t, c)
	got, ok := Get[int16](p)
	if !ok || got != 2 {
		t.Fatalf("Get[int16] = %d, %v; want 2", got, ok)
	}
}

func TestComposeValueFromMixedDependencyTuple(t *testing.T) {
	// wide is deliberately never registered; its optional dependency falls
	// back.
	type wide int

	c := NewCollection()
	Register(c, Shared, func() int8 { return 1 })
	Register(c, Shared, func() int8 { return 2 })
	Register(c, Shared, func() int8 { return 3 })
	Register(c, Transient, func() int16 { return 4 })
	RegisterWith(c, Transient, func(d Quad[
		Optional[int16],
		Optional[wide],
		AllRegistered[int8],
		Registered[int16],
	]) int64 {
		sum := int64(d.First.Or(1000))
		sum += int64(d.Second.Or(2000))
		for v := range d.Third.Seq() {
			sum += int64(v)
		}
		return sum + 2*int64(d.Fourth.Value())
	})

	p := mustBuild(t, c)

	if v, ok := Get[int8](p); !ok || v != 3 {
		t.Fatalf("Get[int8] = %d, %v; want the last shared registration", v, ok)
	}

	want := int64(4) + 2000 + (1 + 2 + 3) + 2*4
	if got, ok := Get[int64](p); !ok || got != want {
		t.Fatalf("Get[int64] = %d, %v; want %d", got, ok, want)
	}
}

func TestEmptyProviderResolvesNothing(t *testing.T) {
	c := NewCollection()
	p := mustBuild(t, c)

	if _, ok := Get[int64](p); ok {
		t.Fatal("Get resolved a value from an empty graph")
	}
	for range GetAll[int64](p) {
		t.Fatal("GetAll yielded a value from an empty graph")
	}
}

func TestInterfaceRegistrationOverConcreteDependency(t *testing.T) {
	c := NewCollection()
	registerLogger(c, Shared)
	registerConfig(c, Shared)
	registerDatabase(c, Shared)
	registerUserRepo(c, Shared)
	RegisterWith(c, Transient, func(d Registered[*testUserRepo]) testService {
		return &testUserService{Repo: d.Value()}
	})

	p := mustBuild(t, c)
	svc, ok := Get[testService](p)
	if !ok || svc.Name() != "user" {
		t.Fatalf("Get[testService] = %v, %v", svc, ok)
	}
}

func TestOptionalPresentUsesRegisteredValue(t *testing.T) {
	c := NewCollection()
	Register(c, Transient, func() int16 { return 4 })
	RegisterWith(c, Transient, func(d Optional[int16]) int64 {
		return int64(d.Or(1000))
	})

	p := mustBuild(t, c)
	if got, _ := Get[int64](p); got != 4 {
		t.Fatalf("Get[int64] = %d, want the registered value, not the fallback", got)
	}
}

func TestRegistrationsAcrossBoundaryShareIdentities(t *testing.T) {
	// Two registrants that never see each other's source wire through the
	// collection they are both handed, exactly like plugin and host.
	registrantA := func(c *Collection) {
		Register(c, Shared, func() *testConfig { return &testConfig{DSN: "from-a"} })
	}
	registrantB := func(c *Collection) {
		RegisterWith(c, Transient, func(d Registered[*testConfig]) *testDatabase {
			return &testDatabase{Config: d.Value()}
		})
	}

	c := NewCollection()
	InvokeRegistration(c, registrantB) // registration order must not matter
	InvokeRegistration(c, registrantA)

	p := mustBuild(t, c)
	db, ok := Get[*testDatabase](p)
	if !ok || db.Config.DSN != "from-a" {
		t.Fatalf("Get = %+v, %v", db, ok)
	}
}

func TestResolutionAbsenceIsNotAnError(t *testing.T) {
	// The optional-dependency pattern: a missing registration is an empty
	// result the caller can fall back from, never a failure.
	c := NewCollection()
	registerLogger(c, Shared)
	p := mustBuild(t, c)

	if _, ok := Get[*testDatabase](p); ok {
		t.Fatal("Get resolved an unregistered identity")
	}
	if _, err := NewCollection().Build(); err != nil {
		t.Fatalf("empty build: %v", err)
	}
	if errors.Is(ErrMissingDependency, ErrCircularDependency) {
		t.Fatal("sentinel classes must stay distinct")
	}
}
