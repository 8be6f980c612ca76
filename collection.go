package acorn

import "fmt"

// Collection is the append-only registry of factory descriptors: the
// registration-time API surface. Registrations accumulate in insertion order
// (the order is semantically meaningful, see [Get] and [GetAll]) until
// [Collection.Build] or [Collection.BuildFactory] consumes the collection.
//
// Registration itself is infallible by design, so plugin registration
// functions never need to propagate an error across the loading boundary.
// All validation is deferred to build, which also lets plugins with circular
// declared intent but no real cycle register in any order.
//
// A Collection is not safe for concurrent registration; registration and
// build are expected to run single-threaded during startup.
type Collection struct {
	strategy Strategy
	entries  []entry
	consumed bool
}

// NewCollection creates an empty collection with a fresh [RegistryStrategy]
// unless [WithStrategy] overrides it.
func NewCollection(opts ...CollectionOption) *Collection {
	c := &Collection{}
	for _, opt := range opts {
		opt(c)
	}
	if c.strategy == nil {
		c.strategy = NewRegistryStrategy()
	}
	return c
}

// Strategy returns the identity strategy all registrants of this collection
// must mint identities with.
func (c *Collection) Strategy() Strategy { return c.strategy }

// Len returns the number of registrations accumulated so far.
func (c *Collection) Len() int { return len(c.entries) }

func (c *Collection) add(e entry) {
	if c.consumed {
		// Registration cannot return an error; late registrations are a host
		// programming error and go through the process handler.
		handleError(fmt.Errorf("%w: late registration of %s", ErrCollectionConsumed, e.typeName))
		return
	}
	c.entries = append(c.entries, e)
}

// Register appends a zero-dependency registration producing T with the given
// lifetime. For [Instance] registrations prefer [RegisterInstance]; a
// zero-dependency Instance factory is accepted and runs once at factory
// build.
func Register[T any](c *Collection, lifetime Lifetime, factory func() T, opts ...Option) {
	e := entry{
		id:       IdentityOf[T](c.strategy),
		lifetime: lifetime,
		typeName: descriptorOf[T](),
		produce:  func(*Provider) any { return factory() },
	}
	for _, opt := range opts {
		opt(&e)
	}
	c.add(e)
}

// RegisterWith appends a registration producing T whose factory consumes the
// declared dependency D. D fixes the dependency tuple at compile time; its
// identities are validated transitively at build.
//
// Instance registrations cannot consume dependencies (their value is fixed
// before any provider exists), so an Instance lifetime here is recorded as
// [Shared].
func RegisterWith[D Dependency, T any](c *Collection, lifetime Lifetime, factory func(D) T, opts ...Option) {
	if lifetime == Instance {
		lifetime = Shared
	}
	var decl D
	e := entry{
		id:       IdentityOf[T](c.strategy),
		lifetime: lifetime,
		deps:     decl.requirements(c.strategy),
		typeName: descriptorOf[T](),
		produce: func(p *Provider) any {
			var d D
			return factory(d.resolveFrom(p).(D))
		},
	}
	for _, opt := range opts {
		opt(&e)
	}
	c.add(e)
}

// RegisterInstance appends a registration whose value is fixed now and shared
// by every provider stamped from the built factory.
func RegisterInstance[T any](c *Collection, value T, opts ...Option) {
	e := entry{
		id:       IdentityOf[T](c.strategy),
		lifetime: Instance,
		typeName: descriptorOf[T](),
		produce:  func(*Provider) any { return value },
	}
	for _, opt := range opts {
		opt(&e)
	}
	c.add(e)
}
