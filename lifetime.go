package acorn

// Lifetime controls how many values a registration produces and who owns
// them.
type Lifetime int

const (
	// Transient means the factory runs on every resolution and each caller
	// receives its own value.
	Transient Lifetime = iota

	// Shared means the factory runs at most once per [Provider]; the value is
	// computed lazily on first resolution and reused for every subsequent
	// one. Concurrent first resolutions converge on a single visible value.
	Shared

	// Instance means the value is fixed when the [ProviderFactory] is built
	// and shared, unchanged, by every provider stamped from that factory.
	// Use [RegisterInstance] to supply the value.
	Instance
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Shared:
		return "shared"
	case Instance:
		return "instance"
	default:
		return "unknown"
	}
}
