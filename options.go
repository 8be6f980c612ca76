package acorn

// entry holds the metadata for a single registration: the target identity,
// its lifetime, the declared dependency edges and the opaque factory.
type entry struct {
	id       Identity
	lifetime Lifetime
	deps     []requirement
	produce  func(*Provider) any
	typeName string
}

// Option configures a registration.
type Option func(*entry)

// WithName discriminates the registration's identity by name. Named
// registrations live under the same type key as unnamed ones but form their
// own candidate family, resolved via [GetNamed] or [NamedIdentityOf].
func WithName(name string) Option {
	return func(e *entry) {
		e.id.name = name
	}
}

// CollectionOption configures a new [Collection].
type CollectionOption func(*Collection)

// WithStrategy replaces the default [RegistryStrategy]. Every participant of
// one build, plugins included, must share the collection's strategy for their
// identities to compare equal.
func WithStrategy(s Strategy) CollectionOption {
	return func(c *Collection) {
		c.strategy = s
	}
}

// buildConfig collects build-time switches.
type buildConfig struct {
	eagerShared bool
}

// BuildOption configures [Collection.Build] and [Collection.BuildFactory].
type BuildOption func(*buildConfig)

// WithEagerShared pre-computes every local Shared value in topological order
// when a provider is stamped, instead of the default lazy first-touch
// computation.
func WithEagerShared() BuildOption {
	return func(cfg *buildConfig) {
		cfg.eagerShared = true
	}
}
