package dungeonecs

import "testing"

// TestIntegrationTickCycleWithSchedulerEventsAndChangeFilters exercises a
// full simulation tick: an Update-phase system emits an event, the event's
// handler applies damage when RunTick flushes the queue, and a
// change-filtered query only matches rows touched since that tick.
func TestIntegrationTickCycleWithSchedulerEventsAndChangeFilters(t *testing.T) {
	w, position, health := newTestWorld(t)
	const damageEvent EventType = 1

	attacker, _ := w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 0.0, "y": 0.0}})
	target, _ := w.Spawn(
		ComponentSpec{Component: position, Data: map[string]any{"x": 1.0, "y": 1.0}},
		ComponentSpec{Component: health},
	)
	bystander, _ := w.Spawn(
		ComponentSpec{Component: position, Data: map[string]any{"x": 9.0, "y": 9.0}},
		ComponentSpec{Component: health},
	)

	var damaged []Entity
	w.events.On(damageEvent, 0, func(w *World, ev Event) {
		e := ev.Payload.(Entity)
		hp, _ := w.Get(e, health)
		current := hp["current"].(int32)
		w.Set(e, health, map[string]any{"current": current - 10})
		damaged = append(damaged, e)
	})

	w.scheduler.Register(System{
		Name:  "attack",
		Phase: Update,
		Run: func(w *World) {
			w.events.Emit(damageEvent, target)
		},
	})

	if err := w.RunTick(); err != nil {
		t.Fatalf("run tick: %v", err)
	}
	if len(damaged) != 1 || damaged[0] != target {
		t.Fatalf("damaged = %v, want [%v]", damaged, target)
	}
	hp, _ := w.Get(target, health)
	if hp["current"] != int32(90) {
		t.Fatalf("target health = %v, want 90", hp["current"])
	}

	// RunTick clears change flags at the end of the same call, so to
	// observe WhereChanged we mutate directly and inspect it before the
	// next tick runs.
	if err := w.Set(target, health, map[string]any{"current": int32(80)}); err != nil {
		t.Fatalf("set: %v", err)
	}
	changed := Query(w, health).WhereChanged(false).Collect()
	if len(changed) != 1 || changed[0] != target {
		t.Fatalf("changed-filter query = %v, want only [%v]", changed, target)
	}

	if w.Tick() != 1 {
		t.Fatalf("Tick() = %d, want 1", w.Tick())
	}
	_ = attacker
	_ = bystander
}

// TestIntegrationCascadeDespawnAndSpatialQuery builds a small scene of
// related, spatially-placed entities and verifies that despawning a root
// entity cascades through its relation, while unrelated entities remain
// queryable. The standalone grid is not owned by the world, so the test
// removes the despawned entities from it by hand.
func TestIntegrationCascadeDespawnAndSpatialQuery(t *testing.T) {
	w, position, _ := newTestWorld(t)
	contains, _ := w.relations.Register("contains", false, false, CascadeDeleteTargets)

	room, _ := w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 10.0, "y": 10.0}})
	chest, _ := w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 11.0, "y": 10.0}})
	farAway, _ := w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 90.0, "y": 90.0}})
	w.relations.Relate(contains, room, chest, nil, w.IsAlive)

	grid := NewSpatialGrid(100, 100, 10)
	index := NewSpatialIndex(grid, position, "x", "y")
	for _, e := range []Entity{room, chest, farAway} {
		if err := index.SyncEntity(w, e); err != nil {
			t.Fatalf("sync entity: %v", err)
		}
	}

	nearby := grid.QueryRadius(10, 10, 5)
	found := map[Entity]bool{}
	for _, e := range nearby {
		found[e] = true
	}
	if !found[room] || !found[chest] || found[farAway] {
		t.Fatalf("QueryRadius = %v, want room and chest but not farAway", nearby)
	}

	w.Despawn(room)
	if w.IsAlive(chest) {
		t.Fatalf("cascade should have despawned the contained chest")
	}
	if !w.IsAlive(farAway) {
		t.Fatalf("unrelated entity should survive the cascade")
	}
	grid.Remove(room)
	grid.Remove(chest)
	remaining := Query(w, position).Collect()
	if len(remaining) != 1 || remaining[0] != farAway {
		t.Fatalf("remaining entities = %v, want only [%v]", remaining, farAway)
	}
}

// TestIntegrationSnapshotRestorePreservesQueryableState builds a world,
// snapshots it, restores into a fresh world, and confirms the restored
// world answers queries identically to the original.
func TestIntegrationSnapshotRestorePreservesQueryableState(t *testing.T) {
	w, position, health := newTestWorld(t)
	w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 1.0, "y": 1.0}})
	w.Spawn(
		ComponentSpec{Component: position, Data: map[string]any{"x": 2.0, "y": 2.0}},
		ComponentSpec{Component: health, Data: map[string]any{"current": int32(42)}},
	)
	if err := w.RunTick(); err != nil {
		t.Fatalf("run tick: %v", err)
	}

	snap, err := w.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	w2, position2, health2 := newTestWorld(t)
	if err := w2.Restore(snap, nil, DeserializeOptions{}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if w2.Tick() != w.Tick() {
		t.Fatalf("restored tick = %d, want %d", w2.Tick(), w.Tick())
	}
	if Query(w2, position2).Count() != 2 {
		t.Fatalf("restored position count = %d, want 2", Query(w2, position2).Count())
	}
	withHealth, ok := Query(w2, position2, health2).First()
	if !ok {
		t.Fatalf("expected an entity with both position and health")
	}
	hp, _ := w2.Get(withHealth, health2)
	if hp["current"] != int32(42) {
		t.Fatalf("restored health.current = %v, want 42", hp["current"])
	}
}
