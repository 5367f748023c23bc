package dungeonecs

import "testing"

func TestQueryCollectMatchesComponentSet(t *testing.T) {
	w, position, health := newTestWorld(t)
	withBoth, _ := w.Spawn(
		ComponentSpec{Component: position, Data: map[string]any{"x": 1.0, "y": 1.0}},
		ComponentSpec{Component: health},
	)
	withPositionOnly, _ := w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 2.0, "y": 2.0}})

	got := Query(w, position, health).Collect()
	if len(got) != 1 || got[0] != withBoth {
		t.Fatalf("Collect() = %v, want [%v]", got, withBoth)
	}

	positionOnly := Query(w, position).Without(health).Collect()
	if len(positionOnly) != 1 || positionOnly[0] != withPositionOnly {
		t.Fatalf("position-without-health Collect() = %v, want [%v]", positionOnly, withPositionOnly)
	}
}

func TestQueryIterMutatesColumn(t *testing.T) {
	w, position, _ := newTestWorld(t)
	e, _ := w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 1.0, "y": 2.0}})

	Query(w, position).Iter(func(v *View, row int) bool {
		xs, err := Column[float64](v, position, "x")
		if err != nil {
			t.Fatalf("Column: %v", err)
		}
		xs[row] += 10
		return true
	})

	pos, _ := w.Get(e, position)
	if pos["x"] != 11.0 {
		t.Fatalf("x = %v, want 11.0", pos["x"])
	}
}

func TestQueryWhereChangedOnlyAdded(t *testing.T) {
	w, position, _ := newTestWorld(t)
	e, _ := w.Spawn(ComponentSpec{Component: position})
	_ = w.RunTick() // clears the Added flag from spawn

	addedCount := Query(w, position).WhereChanged(true).Count()
	if addedCount != 0 {
		t.Fatalf("expected no Added rows after a tick, got %d", addedCount)
	}

	if err := w.Set(e, position, map[string]any{"x": 5.0}); err != nil {
		t.Fatalf("set: %v", err)
	}
	modifiedCount := Query(w, position).WhereChanged(false).Count()
	if modifiedCount != 1 {
		t.Fatalf("expected 1 Modified row after Set, got %d", modifiedCount)
	}
	stillZeroAdded := Query(w, position).WhereChanged(true).Count()
	if stillZeroAdded != 0 {
		t.Fatalf("a Set should not count as Added, got %d", stillZeroAdded)
	}
}

func TestQueryWherePredicate(t *testing.T) {
	w, position, _ := newTestWorld(t)
	w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 1.0, "y": 0.0}})
	w.Spawn(ComponentSpec{Component: position, Data: map[string]any{"x": 99.0, "y": 0.0}})

	got := Query(w, position).Where(func(v *View, row int) bool {
		xs, _ := Column[float64](v, position, "x")
		return xs[row] > 50
	}).Count()
	if got != 1 {
		t.Fatalf("predicate-filtered Count() = %d, want 1", got)
	}
}

func TestQueryCacheInvalidatesOnNewArchetype(t *testing.T) {
	w, position, health := newTestWorld(t)
	w.Spawn(ComponentSpec{Component: position})

	first := Query(w, position).Collect()
	if len(first) != 1 {
		t.Fatalf("expected 1 match before new archetype, got %d", len(first))
	}

	// Spawning with a new component set creates a fresh archetype that
	// also matches the position-only query.
	w.Spawn(ComponentSpec{Component: position}, ComponentSpec{Component: health})

	second := Query(w, position).Collect()
	if len(second) != 2 {
		t.Fatalf("expected 2 matches after a new archetype appears, got %d", len(second))
	}
}
