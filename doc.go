/*
Package dungeonecs is an archetype-based Entity-Component-System runtime
for a turn-based dungeon crawler's server-side world state.

Entities are generational handles; component data lives in per-field
typed columns grouped by archetype, one archetype per exact component
set. Archetypes are never destroyed once created, and Add/Remove move an
entity's row between archetypes along memoized transition edges.

Core concepts:

  - Entity: an opaque generational handle (index + generation).
  - Component: a named, field-typed data layout registered once via
    ComponentBuilder.
  - Archetype: columnar storage for every entity sharing one component
    set, with per-row Added/Modified change tracking.
  - QueryBuilder/View: finds matching archetypes and iterates their rows,
    optionally filtered by change detection or a row predicate.
  - CommandBuffer: defers structural edits so systems can queue them
    mid-tick without disturbing an in-progress query.

Basic usage:

	world := dungeonecs.Factory.NewWorld(dungeonecs.DefaultWorldConfig())

	position, _ := dungeonecs.NewComponent("position").
		Field("x", dungeonecs.PrimF64, nil).
		Field("y", dungeonecs.PrimF64, nil).
		Register(world)

	hp, _ := dungeonecs.NewComponent("health").
		Field("current", dungeonecs.PrimI32, int32(10)).
		Register(world)

	goblin, _ := world.Spawn(
		dungeonecs.ComponentSpec{Component: position, Data: map[string]any{"x": 3.0, "y": 4.0}},
		dungeonecs.ComponentSpec{Component: hp},
	)

	dungeonecs.Query(world, position, hp).Iter(func(v *dungeonecs.View, row int) bool {
		xs, _ := dungeonecs.Column[float64](v, position, "x")
		xs[row] += 1
		return true
	})

	_ = goblin
*/
package dungeonecs
