package dungeonecs

import "testing"

func TestRelationStoreExclusive(t *testing.T) {
	w, position, _ := newTestWorld(t)
	carries, err := w.relations.Register("carries", true, false, CascadeNone)
	if err != nil {
		t.Fatalf("register relation: %v", err)
	}
	player, _ := w.Spawn(ComponentSpec{Component: position})
	sword, _ := w.Spawn(ComponentSpec{Component: position})
	shield, _ := w.Spawn(ComponentSpec{Component: position})

	if !w.relations.Relate(carries, player, sword, nil, w.IsAlive) {
		t.Fatalf("expected Relate to succeed")
	}
	if !w.relations.Relate(carries, player, shield, nil, w.IsAlive) {
		t.Fatalf("expected second Relate to succeed")
	}
	target, ok := w.relations.GetTarget(carries, player)
	if !ok || target != shield {
		t.Fatalf("exclusive relation should keep only the latest target, got %v ok=%v", target, ok)
	}
	if w.relations.Has(carries, player, sword) {
		t.Fatalf("the earlier exclusive link should have been replaced")
	}
}

func TestRelationStoreSymmetric(t *testing.T) {
	w, position, _ := newTestWorld(t)
	adjacent, _ := w.relations.Register("adjacent", false, true, CascadeNone)
	a, _ := w.Spawn(ComponentSpec{Component: position})
	b, _ := w.Spawn(ComponentSpec{Component: position})

	w.relations.Relate(adjacent, a, b, nil, w.IsAlive)
	if !w.relations.Has(adjacent, b, a) {
		t.Fatalf("symmetric relation should establish the reverse link")
	}
}

func TestRelationStoreCascadeOnDespawn(t *testing.T) {
	w, position, _ := newTestWorld(t)
	owns, _ := w.relations.Register("owns", false, false, CascadeDeleteTargets)
	owner, _ := w.Spawn(ComponentSpec{Component: position})
	owned, _ := w.Spawn(ComponentSpec{Component: position})
	w.relations.Relate(owns, owner, owned, nil, w.IsAlive)

	w.Despawn(owner)
	if w.IsAlive(owned) {
		t.Fatalf("cascade relation should despawn the owned entity too")
	}
}

func TestRelationStoreCascadeDeleteSourceOnTargetDespawn(t *testing.T) {
	w, position, _ := newTestWorld(t)
	childOf, _ := w.relations.Register("childOf", false, false, CascadeDeleteSource)
	parent, _ := w.Spawn(ComponentSpec{Component: position})
	child, _ := w.Spawn(ComponentSpec{Component: position})
	// child --childOf--> parent: child is the source, parent is the target.
	w.relations.Relate(childOf, child, parent, nil, w.IsAlive)

	w.Despawn(parent)
	if w.IsAlive(child) {
		t.Fatalf("CascadeDeleteSource should despawn the child when its parent (the target) is despawned")
	}
}

func TestRelationStoreCascadeDeleteTargetsDoesNotCascadeOnSourceDespawnOfReverseDirection(t *testing.T) {
	w, position, _ := newTestWorld(t)
	owns, _ := w.relations.Register("owns", false, false, CascadeDeleteTargets)
	owner, _ := w.Spawn(ComponentSpec{Component: position})
	owned, _ := w.Spawn(ComponentSpec{Component: position})
	w.relations.Relate(owns, owner, owned, nil, w.IsAlive)

	// Despawning the target (owned) must not cascade-delete the source
	// (owner): CascadeDeleteTargets only fires in the source-despawns
	// direction.
	w.Despawn(owned)
	if !w.IsAlive(owner) {
		t.Fatalf("CascadeDeleteTargets should not cascade when the target despawns, only when the source does")
	}
}

func TestEntityRefNullifiedOnDespawn(t *testing.T) {
	w, position, _ := newTestWorld(t)
	target, _ := w.Spawn(ComponentSpec{Component: position})
	target2, _ := w.Spawn(ComponentSpec{Component: position})
	source, _ := w.Spawn(ComponentSpec{Component: position})
	w.SetEntityRef(source, position, "target_ref", target)

	got, ok := w.GetEntityRef(source, position, "target_ref")
	if !ok || got != target {
		t.Fatalf("GetEntityRef = %v, ok=%v, want %v", got, ok, target)
	}

	w.Despawn(target)
	got, ok = w.GetEntityRef(source, position, "target_ref")
	if !ok || got != NullEntity {
		t.Fatalf("GetEntityRef after despawn = %v, ok=%v, want NullEntity", got, ok)
	}
	_ = target2
}
