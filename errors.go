package acorn

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrCollectionConsumed is returned when Build or BuildFactory is called
	// on a collection that has already been built, and reported through the
	// process error handler when a registration arrives after build.
	ErrCollectionConsumed = errors.New("collection already consumed by build")

	// ErrMissingDependency is wrapped by every [MissingDependencyError]
	// inside a [BuildError], so callers can match the whole class with
	// errors.Is.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrCircularDependency is wrapped by every [CycleError] inside a
	// [BuildError]. The error message includes the full chain.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrProviderClosed is reported through the process error handler when a
	// value is resolved from a provider after [Provider.Close].
	ErrProviderClosed = errors.New("provider closed")

	// ErrAlreadyClosed is returned by [Provider.Close] on the second and
	// subsequent calls.
	ErrAlreadyClosed = errors.New("provider already closed")

	// ErrPluginPanic is reported through the process error handler when a
	// plugin registration function panics across the loading boundary.
	ErrPluginPanic = errors.New("plugin registration panicked")
)

// MissingDependencyError describes one declared dependency with no registered
// or ambient producer. Build collects every occurrence before failing.
//
// Error construction avoids fmt so BuildError can assemble large reports
// cheaply.
type MissingDependencyError struct {
	// ID is the unsatisfied identity.
	ID Identity

	// Type is the canonical descriptor of the dependency type.
	Type string

	// RequiredBy is the canonical descriptor of the registration that
	// declared the dependency.
	RequiredBy string
}

func (e MissingDependencyError) Error() string {
	s := ErrMissingDependency.Error() + ": " + e.Type
	if e.ID.name != "" {
		s += " (name " + strconv.Quote(e.ID.name) + ")"
	}
	return s + ", required by " + e.RequiredBy
}

func (e MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// CycleError describes one dependency chain that returns to a registration
// already on the active path. Path holds the canonical descriptors of the
// chain in walk order, with the repeated entry at both ends.
type CycleError struct {
	Path []string
}

func (e CycleError) Error() string {
	return ErrCircularDependency.Error() + ": " + strings.Join(e.Path, " -> ")
}

func (e CycleError) Unwrap() error { return ErrCircularDependency }

// BuildError is the aggregate failure result of [Collection.Build]. It
// enumerates every missing dependency and every independent cycle found in a
// single validation pass; there is no fail-fast per edge.
type BuildError struct {
	Missing []MissingDependencyError
	Cycles  []CycleError
}

func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString("build failed with ")
	b.WriteString(strconv.Itoa(len(e.Missing) + len(e.Cycles)))
	b.WriteString(" error(s)")
	for _, m := range e.Missing {
		b.WriteString("\n\t")
		b.WriteString(m.Error())
	}
	for _, c := range e.Cycles {
		b.WriteString("\n\t")
		b.WriteString(c.Error())
	}
	return b.String()
}

// Unwrap exposes each enumerated problem, so errors.Is(err,
// ErrMissingDependency) and errors.Is(err, ErrCircularDependency) match.
func (e *BuildError) Unwrap() []error {
	out := make([]error, 0, len(e.Missing)+len(e.Cycles))
	for _, m := range e.Missing {
		out = append(out, m)
	}
	for _, c := range e.Cycles {
		out = append(out, c)
	}
	return out
}
