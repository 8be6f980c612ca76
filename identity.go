package acorn

import (
	"reflect"
	"strconv"
	"sync"
)

// TypeKey is the stable, comparable key a [Strategy] assigns to one canonical
// type descriptor. Keys are only meaningful relative to the strategy that
// minted them.
type TypeKey uint32

// Identity addresses one family of registrations: a type key plus an optional
// name discriminating tagged variants of the same type. Identities are
// immutable, comparable and hashable (they are valid map keys), so equality
// and hashing need no extra machinery.
type Identity struct {
	key  TypeKey
	name string
}

// Name returns the discriminator, or "" for the plain identity of a type.
func (id Identity) Name() string { return id.name }

// Describe renders the identity for diagnostics using the strategy that
// minted its key.
func (id Identity) Describe(s Strategy) string {
	desc, ok := s.Descriptor(id.key)
	if !ok {
		desc = "key#" + strconv.FormatUint(uint64(id.key), 10)
	}
	if id.name != "" {
		desc += "[" + id.name + "]"
	}
	return desc
}

// Strategy maps canonical type descriptors to stable type keys.
//
// Native runtime type identity is not guaranteed stable across independently
// compiled binaries, so identity computation is an injectable policy rather
// than a language built-in. Two KeyOf calls with the same descriptor on the
// same strategy instance must return the same key; plugins therefore receive
// the host's already-initialized strategy through the [Collection] they are
// handed, never a strategy of their own.
//
// Implementations must be safe for concurrent use.
type Strategy interface {
	// KeyOf returns the key for a canonical descriptor, minting one on first
	// use.
	KeyOf(descriptor string) TypeKey

	// Descriptor reverses KeyOf for error reporting. ok is false for a key
	// this strategy never minted.
	Descriptor(key TypeKey) (string, bool)
}

// RegistryStrategy is the default [Strategy]: a process-wide monotonic
// registry assigning keys in first-seen order of canonical descriptors.
type RegistryStrategy struct {
	mu          sync.RWMutex
	keys        map[string]TypeKey
	descriptors []string
}

// NewRegistryStrategy creates an empty registry strategy.
func NewRegistryStrategy() *RegistryStrategy {
	return &RegistryStrategy{keys: make(map[string]TypeKey)}
}

func (s *RegistryStrategy) KeyOf(descriptor string) TypeKey {
	s.mu.RLock()
	k, ok := s.keys[descriptor]
	s.mu.RUnlock()
	if ok {
		return k
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[descriptor]; ok {
		return k
	}
	k = TypeKey(len(s.descriptors))
	s.keys[descriptor] = k
	s.descriptors = append(s.descriptors, descriptor)
	return k
}

func (s *RegistryStrategy) Descriptor(key TypeKey) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(key) >= len(s.descriptors) {
		return "", false
	}
	return s.descriptors[key], true
}

// IdentityOf mints the plain identity of T under the given strategy.
func IdentityOf[T any](s Strategy) Identity {
	return Identity{key: s.KeyOf(descriptorOf[T]())}
}

// NamedIdentityOf mints the identity of T discriminated by name, matching
// registrations made with [WithName].
func NamedIdentityOf[T any](s Strategy, name string) Identity {
	return Identity{key: s.KeyOf(descriptorOf[T]()), name: name}
}

// descriptorCache memoizes canonical descriptors per reflect.Type. Reflection
// is used exactly once per type to mint the descriptor; wiring and resolution
// never touch it.
var descriptorCache sync.Map // reflect.Type -> string

func descriptorOf[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if d, ok := descriptorCache.Load(t); ok {
		return d.(string)
	}
	d := canonicalDescriptor(t)
	descriptorCache.Store(t, d)
	return d
}

// canonicalDescriptor renders a collision-resistant name for t. Named types
// use their full package path; common composites recurse so that identically
// named types from different packages never collide inside them.
func canonicalDescriptor(t reflect.Type) string {
	if t.Name() != "" {
		if pkg := t.PkgPath(); pkg != "" {
			return pkg + "." + t.Name()
		}
		return t.Name() // predeclared types: int, string, error, ...
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + canonicalDescriptor(t.Elem())
	case reflect.Slice:
		return "[]" + canonicalDescriptor(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + canonicalDescriptor(t.Elem())
	case reflect.Map:
		return "map[" + canonicalDescriptor(t.Key()) + "]" + canonicalDescriptor(t.Elem())
	case reflect.Chan:
		return "chan " + canonicalDescriptor(t.Elem())
	default:
		return t.String()
	}
}
