package dungeonecs

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// WorldStats is a point-in-time snapshot of world-level counters, for
// debug dashboards and tests.
type WorldStats struct {
	LiveEntities    int
	ArchetypeCount  int
	ComponentTypes  int
	Tick            uint64
	QueryCacheHits  uint64
	QueryCacheMiss  uint64
}

// Inspector is a debug-only, read-only collaborator over a World: it
// never mutates state, only reports it.
type Inspector struct {
	world *World
}

// NewInspector wraps w for inspection.
func NewInspector(w *World) *Inspector {
	return &Inspector{world: w}
}

// Stats summarizes world-level counters.
func (in *Inspector) Stats() WorldStats {
	hits, misses := in.world.queries.Stats()
	return WorldStats{
		LiveEntities:   len(in.world.entities.liveEntities()),
		ArchetypeCount: in.world.graph.count(),
		ComponentTypes: len(in.world.components.All()),
		Tick:           in.world.tick,
		QueryCacheHits: hits,
		QueryCacheMiss: misses,
	}
}

// EntityInspection is the detailed view of one entity's current state.
type EntityInspection struct {
	Entity     Entity
	Alive      bool
	Archetype  uint32
	Components map[string]map[string]any
}

// InspectEntity reports e's resident components and their field values.
func (in *Inspector) InspectEntity(e Entity) EntityInspection {
	insp := EntityInspection{Entity: e, Alive: in.world.IsAlive(e), Components: make(map[string]map[string]any)}
	if !insp.Alive {
		return insp
	}
	loc, _ := in.world.entities.location(e)
	if !loc.hasArchetype {
		return insp
	}
	insp.Archetype = uint32(loc.archetype)
	arche := in.world.graph.byID[loc.archetype-1]
	for _, meta := range in.world.components.All() {
		if !arche.Has(meta.Index) {
			continue
		}
		values, _ := arche.readComponent(int(loc.row), meta.Index)
		insp.Components[meta.Name] = values
	}
	return insp
}

// ArchetypeInfo summarizes one archetype for listing.
type ArchetypeInfo struct {
	ID         uint32
	Components []string
	Count      int
}

// ListArchetypes reports every archetype currently in the graph, in
// creation order.
func (in *Inspector) ListArchetypes() []ArchetypeInfo {
	out := make([]ArchetypeInfo, 0, in.world.graph.count())
	for _, arche := range in.world.graph.all() {
		names := make([]string, len(arche.components))
		for i, c := range arche.components {
			meta, _ := in.world.components.MetaByIndex(c)
			names[i] = meta.Name
		}
		out = append(out, ArchetypeInfo{ID: arche.ID(), Components: names, Count: arche.Count()})
	}
	return out
}

// FindEntitiesWith returns every live entity carrying all of the given
// components.
func (in *Inspector) FindEntitiesWith(components ...ComponentID) []Entity {
	return Query(in.world, components...).Collect()
}

// DumpWorld renders a human-readable summary of every archetype and its
// resident entities, for debugging.
func (in *Inspector) DumpWorld() string {
	var b strings.Builder
	stats := in.Stats()
	fmt.Fprintf(&b, "tick=%d entities=%d archetypes=%d components=%d\n",
		stats.Tick, stats.LiveEntities, stats.ArchetypeCount, stats.ComponentTypes)
	archetypes := in.ListArchetypes()
	sort.Slice(archetypes, func(i, j int) bool { return archetypes[i].ID < archetypes[j].ID })
	for _, a := range archetypes {
		fmt.Fprintf(&b, "archetype %d %s rows=%d\n", a.ID, componentNamesAsString(a.Components), a.Count)
	}
	out := b.String()
	log.Print(out)
	return out
}
