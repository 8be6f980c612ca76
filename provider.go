package acorn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"sync"
	"sync/atomic"
)

// Provider is the immutable, queryable result of a successful build. It
// resolves identities with lifetime-correct caching and may delegate to a
// parent provider on local misses. A built Provider is safe for concurrent
// use without internal locks on the resolution path; its only mutable state
// is the lazy shared-value cache, maintained through an atomic
// claim-and-publish protocol.
type Provider struct {
	graph   *graph
	factory *ProviderFactory
	parent  *Provider

	// shared holds one write-once slot per Shared registration of the local
	// graph. Slots are populated lazily on first touch.
	shared []atomic.Pointer[sharedValue]

	closed atomic.Bool

	// mu guards closers only; it is never held across a factory invocation.
	mu      sync.Mutex
	closers []io.Closer
}

// sharedValue is the published cache cell for one Shared registration.
type sharedValue struct {
	value    any
	typeName string
}

// String describes the provider for logs.
func (p *Provider) String() string {
	cached := 0
	for i := range p.shared {
		if p.shared[i].Load() != nil {
			cached++
		}
	}
	return "Provider(services: " + strconv.Itoa(len(p.graph.entries)) +
		", cached: " + strconv.Itoa(cached) + ")"
}

// Get resolves the last-registered producer of T, walking up the parent
// chain on a local miss. ok is false only when no registration for T exists
// anywhere in the hierarchy; a built provider never fails a resolution the
// validator proved satisfiable.
func Get[T any](p *Provider) (T, bool) {
	return getIdentity[T](p, IdentityOf[T](p.graph.strategy))
}

// GetNamed resolves the last-registered producer of T discriminated by name
// (see [WithName]).
func GetNamed[T any](p *Provider, name string) (T, bool) {
	return getIdentity[T](p, NamedIdentityOf[T](p.graph.strategy, name))
}

func getIdentity[T any](p *Provider, id Identity) (T, bool) {
	for q := p; q != nil; q = q.parent {
		cands := q.graph.candidates[id]
		if len(cands) == 0 {
			continue
		}
		// Shadowing: the last-registered candidate wins. Resolution happens
		// against the owning provider, so a shared value registered in a
		// parent is computed once and observed by the whole tree.
		return q.resolveEntry(cands[len(cands)-1]).(T), true
	}
	var zero T
	return zero, false
}

// GetAll returns a lazy sequence over every producer of T, in registration
// order. Each candidate's factory runs on first touch of that specific item:
// transient members are re-created per walk, while shared and instance
// members reuse their one cached value. The sequence is restartable; ranging
// again produces a fresh walk.
//
// On a local miss the sequence comes from the nearest ancestor with
// registrations for T. Zero registrations yield an empty sequence.
func GetAll[T any](p *Provider) iter.Seq[T] {
	id := IdentityOf[T](p.graph.strategy)
	owner := p
	for owner != nil && len(owner.graph.candidates[id]) == 0 {
		owner = owner.parent
	}
	return func(yield func(T) bool) {
		if owner == nil {
			return
		}
		for _, pos := range owner.graph.candidates[id] {
			if !yield(owner.resolveEntry(pos).(T)) {
				return
			}
		}
	}
}

func (p *Provider) resolveEntry(pos int) any {
	e := &p.graph.entries[pos]
	p.checkOpen(e.typeName)
	switch e.lifetime {
	case Shared:
		return p.resolveShared(pos, e)
	case Instance:
		return p.factory.instances[p.graph.instanceIdx[pos]]
	default:
		return e.produce(p)
	}
}

// resolveShared implements the claim-and-publish protocol: compute outside
// any lock, publish with a compare-and-swap, and on a lost race discard the
// redundant computation in favor of the winner's published value. The
// contract is a single observable cached value, not a single factory
// invocation; a factory that resolves other services through its own
// provider can therefore never deadlock against it.
func (p *Provider) resolveShared(pos int, e *entry) any {
	slot := &p.shared[p.graph.sharedIdx[pos]]
	if v := slot.Load(); v != nil {
		return v.value
	}

	produced := e.produce(p)
	if slot.CompareAndSwap(nil, &sharedValue{value: produced, typeName: e.typeName}) {
		p.trackCloser(produced)
		return produced
	}
	return slot.Load().value
}

// trackCloser records the published value for Close if it owns resources.
// Only the publishing winner records, so close order matches production
// order.
func (p *Provider) trackCloser(v any) {
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	p.mu.Lock()
	p.closers = append(p.closers, closer)
	p.mu.Unlock()
}

// checkOpen reports a lifetime violation through the process error handler
// when a value is resolved from a closed provider. If the installed handler
// returns, resolution proceeds; the default handler aborts.
func (p *Provider) checkOpen(typeName string) {
	if p.closed.Load() {
		handleError(fmt.Errorf("%w: resolving %s", ErrProviderClosed, typeName))
	}
}

// initEagerShared pre-computes every local shared value, dependencies first.
func (p *Provider) initEagerShared() {
	for _, pos := range p.graph.order {
		if p.graph.sharedIdx[pos] >= 0 {
			p.resolveShared(pos, &p.graph.entries[pos])
		}
	}
}

// Close releases every shared value this provider produced that implements
// [io.Closer], dependents before their dependencies (reverse production
// order). The context bounds the whole pass; when it expires the remaining
// closers are skipped and the context error is included in the result.
//
// Close is safe to call multiple times; subsequent calls return
// [ErrAlreadyClosed]. Resolving from a closed provider is reported through
// the process error handler. Instance values are owned by the
// [ProviderFactory], not the provider, and are left untouched.
func (p *Provider) Close(ctx context.Context) error {
	if p.closed.Swap(true) {
		return ErrAlreadyClosed
	}

	p.mu.Lock()
	closers := p.closers
	p.closers = nil
	p.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
