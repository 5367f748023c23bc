package dungeonecs

import "testing"

func TestEventQueueFIFOWithinType(t *testing.T) {
	w, _, _ := newTestWorld(t)
	q := newEventQueue()
	var seen []int
	q.On(1, 0, func(w *World, ev Event) {
		seen = append(seen, ev.Payload.(int))
	})
	q.Emit(1, 1)
	q.Emit(1, 2)
	q.Emit(1, 3)
	if err := q.Flush(w); err != nil {
		t.Fatalf("flush: %v", err)
	}
	want := []int{1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestEventQueueTypeOrderAscending(t *testing.T) {
	w, _, _ := newTestWorld(t)
	q := newEventQueue()
	var order []EventType
	q.On(5, 0, func(w *World, ev Event) { order = append(order, ev.Type) })
	q.On(1, 0, func(w *World, ev Event) { order = append(order, ev.Type) })
	q.Emit(5, nil)
	q.Emit(1, nil)
	if err := q.Flush(w); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 5 {
		t.Fatalf("order = %v, want [1 5]", order)
	}
}

func TestEventQueueNameDrivenOrderIgnoresRegistrationOrder(t *testing.T) {
	w, _, _ := newTestWorld(t)
	q := newEventQueue()

	death := q.RegisterType("combat.death")
	moved := q.RegisterType("movement.moved")
	spawned := q.RegisterType("entity.spawned")
	damage := q.RegisterType("combat.damage")

	var order []string
	for name, t := range map[string]EventType{"combat.death": death, "movement.moved": moved, "entity.spawned": spawned, "combat.damage": damage} {
		name, t := name, t
		q.On(t, 0, func(w *World, ev Event) { order = append(order, name) })
	}
	q.Emit(moved, nil)
	q.Emit(spawned, nil)
	q.Emit(damage, nil)
	q.Emit(death, nil)

	if err := q.Flush(w); err != nil {
		t.Fatalf("flush: %v", err)
	}
	want := []string{"combat.damage", "combat.death", "entity.spawned", "movement.moved"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestEventQueuePriorityThenInsertionOrder(t *testing.T) {
	w, _, _ := newTestWorld(t)
	q := newEventQueue()
	var order []string
	q.On(1, 10, func(w *World, ev Event) { order = append(order, "late") })
	q.On(1, 0, func(w *World, ev Event) { order = append(order, "early-a") })
	q.On(1, 0, func(w *World, ev Event) { order = append(order, "early-b") })
	q.Emit(1, nil)
	if err := q.Flush(w); err != nil {
		t.Fatalf("flush: %v", err)
	}
	want := []string{"early-a", "early-b", "late"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestEventQueueWildcardRunsAfterSpecific(t *testing.T) {
	w, _, _ := newTestWorld(t)
	q := newEventQueue()
	var order []string
	q.OnAny(0, func(w *World, ev Event) { order = append(order, "wildcard") })
	q.On(1, 0, func(w *World, ev Event) { order = append(order, "specific") })
	q.Emit(1, nil)
	if err := q.Flush(w); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(order) != 2 || order[0] != "specific" || order[1] != "wildcard" {
		t.Fatalf("order = %v, want [specific wildcard]", order)
	}
}

func TestEventQueueReentrantFlushRejected(t *testing.T) {
	w, _, _ := newTestWorld(t)
	q := newEventQueue()
	var innerErr error
	q.On(1, 0, func(w *World, ev Event) {
		innerErr = q.Flush(w)
	})
	q.Emit(1, nil)
	if err := q.Flush(w); err != nil {
		t.Fatalf("outer flush: %v", err)
	}
	if innerErr == nil {
		t.Fatalf("expected ReentrantFlushError from the nested flush")
	}
}
