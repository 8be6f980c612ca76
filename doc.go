// Package acorn is a reflection-free dependency injection engine for Go.
//
// Acorn composes independently written components into a validated service
// graph. Components register factory functions against a stable service
// identity (including from dynamically loaded plugin binaries) and the host
// turns the accumulated registrations into an immutable, concurrency-safe
// [Provider] with a single [Collection.Build] call. Wiring never inspects
// function signatures at runtime: dependencies are declared explicitly at
// registration time through typed [Dependency] declarations.
//
// # Quick Start
//
//	c := acorn.NewCollection()
//	acorn.Register(c, acorn.Shared, func() *Config { return loadConfig() })
//	acorn.RegisterWith(c, acorn.Shared, func(cfg acorn.Registered[*Config]) *Database {
//		return openDatabase(cfg.Value())
//	})
//
//	p, err := c.Build()
//	if err != nil {
//		// err enumerates every missing dependency and cycle at once.
//	}
//	db, ok := acorn.Get[*Database](p)
//
// # Lifetimes
//
// [Transient] — a fresh value on every resolution.
//
// [Shared] — one lazily computed value per provider, safe for concurrent
// first access.
//
// [Instance] — one value fixed when a [ProviderFactory] is built, visible to
// every provider stamped from that factory.
//
// # Validation
//
// [Collection.Build] validates the whole graph before the first resolution:
// every declared dependency must have a registered (or ambient) producer and
// the graph must be acyclic. Failures are reported exhaustively in a single
// [BuildError] so one corrective pass can fix them all. A provider that builds
// successfully never fails a resolution the validator proved satisfiable.
//
// # Multiple Registrations
//
// Registering the same identity more than once is allowed. [Get] returns the
// value of the last registration; [GetAll] walks every candidate lazily in
// registration order.
//
// # Plugins
//
// A dynamically loaded binary exports a single [RegistrationFunc] under
// [RegistrationSymbol] and populates a host-owned [Collection] through the
// same API the host uses. Unrecoverable failures crossing that boundary are
// routed through the process-wide handler installed with [SetErrorHandler].
package acorn
