package acorn

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
)

// ProviderFactory is a reusable, pre-validated blueprint. It owns one
// validated graph plus the Instance values fixed at factory-build time, and
// stamps out lightweight providers that share both while keeping their own
// fresh Shared and Transient evaluation state. Validation cost is paid once
// per collection, not once per provider.
type ProviderFactory struct {
	graph       *graph
	instances   []any
	closers     []io.Closer
	eagerShared bool
	closed      atomic.Bool
}

// BuildFactory consumes the collection and validates the dependency graph.
// On failure the returned error is a *[BuildError] enumerating every missing
// dependency and cycle; no factory is produced. There is no partial or
// degraded result.
//
// Instance registrations are evaluated here, once, and observed by every
// stamped provider.
func (c *Collection) BuildFactory(opts ...BuildOption) (*ProviderFactory, error) {
	if c.consumed {
		return nil, ErrCollectionConsumed
	}
	c.consumed = true

	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	g := newGraph(c)
	if be := validate(g); be != nil {
		return nil, be
	}

	f := &ProviderFactory{
		graph:       g,
		instances:   make([]any, g.instanceCount),
		eagerShared: cfg.eagerShared,
	}
	if g.instanceCount > 0 {
		// Instance factories take no dependencies; the bootstrap provider
		// only satisfies the produce signature.
		boot := &Provider{graph: g, factory: f, shared: make([]atomic.Pointer[sharedValue], g.sharedCount)}
		for _, pos := range g.order {
			idx := g.instanceIdx[pos]
			if idx < 0 {
				continue
			}
			v := g.entries[pos].produce(boot)
			f.instances[idx] = v
			if closer, ok := v.(io.Closer); ok {
				f.closers = append(f.closers, closer)
			}
		}
	}
	return f, nil
}

// Build consumes the collection, validates it and returns a single provider
// stamped from the resulting factory. It is the common path for hosts that
// need exactly one provider.
func (c *Collection) Build(opts ...BuildOption) (*Provider, error) {
	f, err := c.BuildFactory(opts...)
	if err != nil {
		return nil, err
	}
	return f.BuildProvider(), nil
}

// BuildProvider stamps a fresh provider from the validated graph.
func (f *ProviderFactory) BuildProvider() *Provider {
	return f.BuildProviderWith(nil)
}

// BuildProviderWith stamps a fresh provider that delegates to base on local
// misses. The base provider replaces nested scopes: a shared value resolved
// through it is computed at most once across the whole tree and observed
// downward, and no provider can expose a value whose true lifetime is
// shorter than its own.
//
// Dependencies declared with [Registered] were validated against the local
// graph only; the base extends what [Get] can see, it does not relax what
// build asserted.
func (f *ProviderFactory) BuildProviderWith(base *Provider) *Provider {
	p := &Provider{
		graph:   f.graph,
		factory: f,
		parent:  base,
		shared:  make([]atomic.Pointer[sharedValue], f.graph.sharedCount),
	}
	if f.eagerShared {
		p.initEagerShared()
	}
	return p
}

// Close releases every Instance value owned by the factory that implements
// [io.Closer], in reverse production order. Providers stamped from the
// factory must be closed first by their owners; the factory does not track
// them.
func (f *ProviderFactory) Close(ctx context.Context) error {
	if f.closed.Swap(true) {
		return ErrAlreadyClosed
	}
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := f.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
