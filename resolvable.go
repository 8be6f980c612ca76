package acorn

import "iter"

// Dependency declares, at registration time, what a factory consumes. The
// concrete declarations are [Registered], [Optional], [AllRegistered],
// [SelfProvider] and the tuple combinators [Pair], [Triple] and [Quad]; the
// interface is sealed because the validator must understand every
// declaration it is asked to check.
type Dependency interface {
	// requirements lists the identities this declaration pulls from the
	// graph. Called on the zero value during registration.
	requirements(s Strategy) []requirement

	// resolveFrom produces a populated copy of the declaration. The returned
	// value is always the receiver's own concrete type.
	resolveFrom(p *Provider) any
}

// requirement is one declared edge from a registration to an identity.
type requirement struct {
	id Identity

	// optional requirements never fail the totality check; an absent
	// producer resolves to an empty result. They still participate in cycle
	// detection, since resolving through them would recurse at runtime.
	optional bool

	typeName string
}

// Registered declares a required dependency on the last-registered producer
// of T. Build fails with a missing-dependency error if no producer of T
// exists, so resolution can never miss.
type Registered[T any] struct {
	value T
}

// Value returns the resolved dependency.
func (d Registered[T]) Value() T { return d.value }

func (Registered[T]) requirements(s Strategy) []requirement {
	return []requirement{{id: IdentityOf[T](s), typeName: descriptorOf[T]()}}
}

func (Registered[T]) resolveFrom(p *Provider) any {
	// Satisfiability was proven at build time; ok can only be false through
	// misuse of the unexported API.
	v, _ := Get[T](p)
	return Registered[T]{value: v}
}

// Optional declares a dependency that may be absent. It never causes a
// missing-dependency build error; use [Optional.Get] or [Optional.Or] to
// handle absence at resolution time.
type Optional[T any] struct {
	value T
	ok    bool
}

// Get returns the resolved value and whether any producer of T existed.
func (d Optional[T]) Get() (T, bool) { return d.value, d.ok }

// Or returns the resolved value, or fallback if no producer of T existed.
func (d Optional[T]) Or(fallback T) T {
	if d.ok {
		return d.value
	}
	return fallback
}

func (Optional[T]) requirements(s Strategy) []requirement {
	return []requirement{{id: IdentityOf[T](s), optional: true, typeName: descriptorOf[T]()}}
}

func (Optional[T]) resolveFrom(p *Provider) any {
	v, ok := Get[T](p)
	return Optional[T]{value: v, ok: ok}
}

// AllRegistered declares a dependency on every producer of T. The sequence is
// lazy: each candidate's factory runs on first touch of that specific item,
// in registration order. Zero producers is not an error; the sequence is
// empty.
type AllRegistered[T any] struct {
	seq iter.Seq[T]
}

// Seq returns the lazy candidate sequence. It is restartable; shared values
// already cached by the provider are reused across walks.
func (d AllRegistered[T]) Seq() iter.Seq[T] { return d.seq }

func (AllRegistered[T]) requirements(s Strategy) []requirement {
	return []requirement{{id: IdentityOf[T](s), optional: true, typeName: descriptorOf[T]()}}
}

func (AllRegistered[T]) resolveFrom(p *Provider) any {
	return AllRegistered[T]{seq: GetAll[T](p)}
}

// SelfProvider declares a dependency on the resolving provider itself. It is
// ambient: it resolves without any registration, letting a factory perform
// deferred resolution or hand the provider downward.
type SelfProvider struct {
	p *Provider
}

// Provider returns the provider performing the current resolution.
func (d SelfProvider) Provider() *Provider { return d.p }

func (SelfProvider) requirements(Strategy) []requirement { return nil }

func (SelfProvider) resolveFrom(p *Provider) any { return SelfProvider{p: p} }

// Pair combines two dependency declarations positionally. The pair resolves
// only if both members resolve; requirements are checked transitively at
// build.
type Pair[A, B Dependency] struct {
	First  A
	Second B
}

func (Pair[A, B]) requirements(s Strategy) []requirement {
	var a A
	var b B
	return append(a.requirements(s), b.requirements(s)...)
}

func (Pair[A, B]) resolveFrom(p *Provider) any {
	var a A
	var b B
	return Pair[A, B]{
		First:  a.resolveFrom(p).(A),
		Second: b.resolveFrom(p).(B),
	}
}

// Triple combines three dependency declarations positionally.
type Triple[A, B, C Dependency] struct {
	First  A
	Second B
	Third  C
}

func (Triple[A, B, C]) requirements(s Strategy) []requirement {
	var a A
	var b B
	var c C
	reqs := append(a.requirements(s), b.requirements(s)...)
	return append(reqs, c.requirements(s)...)
}

func (Triple[A, B, C]) resolveFrom(p *Provider) any {
	var a A
	var b B
	var c C
	return Triple[A, B, C]{
		First:  a.resolveFrom(p).(A),
		Second: b.resolveFrom(p).(B),
		Third:  c.resolveFrom(p).(C),
	}
}

// Quad combines four dependency declarations positionally.
type Quad[A, B, C, D Dependency] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

func (Quad[A, B, C, D]) requirements(s Strategy) []requirement {
	var a A
	var b B
	var c C
	var d D
	reqs := append(a.requirements(s), b.requirements(s)...)
	reqs = append(reqs, c.requirements(s)...)
	return append(reqs, d.requirements(s)...)
}

func (Quad[A, B, C, D]) resolveFrom(p *Provider) any {
	var a A
	var b B
	var c C
	var d D
	return Quad[A, B, C, D]{
		First:  a.resolveFrom(p).(A),
		Second: b.resolveFrom(p).(B),
		Third:  c.resolveFrom(p).(C),
		Fourth: d.resolveFrom(p).(D),
	}
}
