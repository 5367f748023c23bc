package dungeonecs

import "sort"

// transitionEdge memoizes the archetype reached by adding or removing one
// component from a given archetype, so repeated Add/Remove calls on the
// same (archetype, component) pair skip the component-set computation.
type transitionEdge struct {
	add    map[ComponentID]archetypeID
	remove map[ComponentID]archetypeID
}

// archetypeGraph is the Archetype Graph: archetypes are identified by
// their exact component set and are never destroyed once created, even
// when they go empty. Transition edges are memoized per archetype so
// repeated structural changes amortize to O(1) after the first traversal.
type archetypeGraph struct {
	registry   *ComponentRegistry
	nextID     archetypeID
	byID       []*Archetype
	byKey      map[string]archetypeID
	edges      map[archetypeID]*transitionEdge
	initialCap int
}

func newArchetypeGraph(registry *ComponentRegistry, initialCap int) *archetypeGraph {
	g := &archetypeGraph{
		registry:   registry,
		nextID:     1, // 0 reserved for "no archetype" (entities with no components)
		byKey:      make(map[string]archetypeID),
		edges:      make(map[archetypeID]*transitionEdge),
		initialCap: initialCap,
	}
	return g
}

func componentSetKey(components []ComponentID) string {
	sorted := append([]ComponentID(nil), components...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := make([]byte, 0, len(sorted)*5)
	for _, c := range sorted {
		key = append(key, byte(c), byte(c>>8), byte(c>>16), byte(c>>24), '|')
	}
	return string(key)
}

// getOrCreate returns the archetype for the exact component set, creating
// it (and registering it in byKey/byID) on first use.
func (g *archetypeGraph) getOrCreate(components []ComponentID) (*Archetype, error) {
	sorted := append([]ComponentID(nil), components...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := componentSetKey(sorted)
	if id, ok := g.byKey[key]; ok {
		return g.byID[id-1], nil
	}
	id := g.nextID
	g.nextID++
	arche, err := newArchetype(id, g.registry, sorted, g.initialCap)
	if err != nil {
		return nil, err
	}
	g.byKey[key] = id
	g.byID = append(g.byID, arche)
	return arche, nil
}

func (g *archetypeGraph) edgeFor(id archetypeID) *transitionEdge {
	e, ok := g.edges[id]
	if !ok {
		e = &transitionEdge{add: make(map[ComponentID]archetypeID), remove: make(map[ComponentID]archetypeID)}
		g.edges[id] = e
	}
	return e
}

// withAdded returns the archetype reached by adding component c to src
// (or src itself if c is already present), memoizing the edge.
func (g *archetypeGraph) withAdded(src *Archetype, c ComponentID) (*Archetype, error) {
	if src != nil && src.Has(c) {
		return src, nil
	}
	var srcID archetypeID
	var components []ComponentID
	if src != nil {
		srcID = src.id
		components = append(components, src.components...)
	}
	if dst, ok := g.edgeFor(srcID).add[c]; ok {
		return g.byID[dst-1], nil
	}
	components = append(components, c)
	dst, err := g.getOrCreate(components)
	if err != nil {
		return nil, err
	}
	g.edgeFor(srcID).add[c] = dst.id
	return dst, nil
}

// withRemoved returns the archetype reached by removing component c from
// src (or src itself if c is absent), memoizing the edge.
func (g *archetypeGraph) withRemoved(src *Archetype, c ComponentID) (*Archetype, error) {
	if src == nil || !src.Has(c) {
		return src, nil
	}
	if dst, ok := g.edgeFor(src.id).remove[c]; ok {
		if dst == 0 {
			return nil, nil
		}
		return g.byID[dst-1], nil
	}
	remaining := make([]ComponentID, 0, len(src.components)-1)
	for _, existing := range src.components {
		if existing != c {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == 0 {
		g.edgeFor(src.id).remove[c] = 0
		return nil, nil
	}
	dst, err := g.getOrCreate(remaining)
	if err != nil {
		return nil, err
	}
	g.edgeFor(src.id).remove[c] = dst.id
	return dst, nil
}

// all returns every archetype ever created, in creation order.
func (g *archetypeGraph) all() []*Archetype {
	return g.byID
}

// count is used by QueryCache to detect whether new archetypes have
// appeared since a query was last resolved; archetypes are never
// destroyed, so a count comparison alone is sufficient invalidation.
func (g *archetypeGraph) count() int {
	return len(g.byID)
}
