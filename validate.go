package acorn

// graph is the frozen result of validation: the entries, an index from each
// identity to its candidate registrations in registration order, slot
// assignments for cached lifetimes and a topological evaluation order. It is
// immutable after build and shared by every provider stamped from it.
type graph struct {
	strategy   Strategy
	entries    []entry
	candidates map[Identity][]int

	// sharedIdx / instanceIdx map an entry position to its cache slot, or -1
	// for lifetimes that are never cached.
	sharedIdx     []int
	instanceIdx   []int
	sharedCount   int
	instanceCount int

	// order lists entry positions dependencies-first. It is a scheduling
	// hint for eager pre-computation only; resolution is lazy by default.
	order []int
}

func (g *graph) label(pos int) string {
	e := &g.entries[pos]
	if e.id.name != "" {
		return e.typeName + "[" + e.id.name + "]"
	}
	return e.typeName
}

// newGraph indexes the collection's entries without validating them.
func newGraph(c *Collection) *graph {
	g := &graph{
		strategy:    c.strategy,
		entries:     c.entries,
		candidates:  make(map[Identity][]int),
		sharedIdx:   make([]int, len(c.entries)),
		instanceIdx: make([]int, len(c.entries)),
	}
	for pos := range g.entries {
		e := &g.entries[pos]
		g.candidates[e.id] = append(g.candidates[e.id], pos)

		g.sharedIdx[pos], g.instanceIdx[pos] = -1, -1
		switch e.lifetime {
		case Shared:
			g.sharedIdx[pos] = g.sharedCount
			g.sharedCount++
		case Instance:
			g.instanceIdx[pos] = g.instanceCount
			g.instanceCount++
		}
	}
	return g
}

// validate runs the totality and cycle checks, filling g.order as a side
// effect of the cycle walk. Problems are enumerated, not fail-fast: a single
// build reports the complete deficiency list.
func validate(g *graph) *BuildError {
	var be BuildError

	// Totality: every required (non-optional, non-ambient) identity needs at
	// least one candidate. Optional and enumeration dependencies resolve to
	// empty results instead.
	seen := make(map[missingKey]bool)
	for pos := range g.entries {
		e := &g.entries[pos]
		for _, req := range e.deps {
			if req.optional || len(g.candidates[req.id]) > 0 {
				continue
			}
			k := missingKey{id: req.id, requiredBy: pos}
			if seen[k] {
				continue
			}
			seen[k] = true
			be.Missing = append(be.Missing, MissingDependencyError{
				ID:         req.id,
				Type:       req.typeName,
				RequiredBy: g.label(pos),
			})
		}
	}

	// Cycle check: depth-first over entry -> dependency-candidate edges with
	// an active-path stack. Optional edges participate: resolving through
	// them recurses at runtime all the same. Every independent cycle is
	// reported in this one pass.
	const (
		unvisited = iota
		visiting
		visited
	)
	states := make([]int, len(g.entries))
	path := make([]int, 0, len(g.entries))

	var walk func(pos int)
	walk = func(pos int) {
		states[pos] = visiting
		path = append(path, pos)

		for _, req := range g.entries[pos].deps {
			for _, cand := range g.candidates[req.id] {
				switch states[cand] {
				case unvisited:
					walk(cand)
				case visiting:
					be.Cycles = append(be.Cycles, cycleFromPath(g, path, cand))
				}
			}
		}

		states[pos] = visited
		path = path[:len(path)-1]
		g.order = append(g.order, pos)
	}

	for pos := range g.entries {
		if states[pos] == unvisited {
			walk(pos)
		}
	}

	if len(be.Missing) == 0 && len(be.Cycles) == 0 {
		return nil
	}
	g.order = nil
	return &be
}

type missingKey struct {
	id         Identity
	requiredBy int
}

// cycleFromPath extracts the cycle closing at back from the active path,
// repeating the closing entry at both ends of the reported chain.
func cycleFromPath(g *graph, path []int, back int) CycleError {
	start := 0
	for i, pos := range path {
		if pos == back {
			start = i
			break
		}
	}
	chain := make([]string, 0, len(path)-start+1)
	for _, pos := range path[start:] {
		chain = append(chain, g.label(pos))
	}
	chain = append(chain, g.label(back))
	return CycleError{Path: chain}
}
