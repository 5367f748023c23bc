package dungeonecs

import "testing"

func TestSpatialGridQueryRect(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	a := Entity(1)
	b := Entity(2)
	c := Entity(3)
	grid.Insert(a, 5, 5)
	grid.Insert(b, 50, 50)
	grid.Insert(c, 95, 95)

	got := grid.QueryRect(0, 0, 20, 20)
	if len(got) != 1 || got[0] != a {
		t.Fatalf("QueryRect = %v, want [%v]", got, a)
	}
}

func TestSpatialGridUpdateMovesCell(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	e := Entity(1)
	grid.Insert(e, 5, 5)
	grid.Update(e, 95, 95)

	if got := grid.QueryRect(0, 0, 20, 20); len(got) != 0 {
		t.Fatalf("entity should have moved out of the original cell, found %v", got)
	}
	got := grid.QueryRect(80, 80, 100, 100)
	if len(got) != 1 || got[0] != e {
		t.Fatalf("QueryRect at new position = %v, want [%v]", got, e)
	}
}

func TestSpatialGridQueryRadius(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	center := Entity(1)
	near := Entity(2)
	far := Entity(3)
	grid.Insert(center, 50, 50)
	grid.Insert(near, 52, 50)
	grid.Insert(far, 10, 10)

	got := grid.QueryRadius(50, 50, 5)
	found := map[Entity]bool{}
	for _, e := range got {
		found[e] = true
	}
	if !found[center] || !found[near] {
		t.Fatalf("QueryRadius should find center and near, got %v", got)
	}
	if found[far] {
		t.Fatalf("QueryRadius should not find far, got %v", got)
	}
}

func TestSpatialGridQueryNearest(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	closest := Entity(1)
	mid := Entity(2)
	farthest := Entity(3)
	grid.Insert(mid, 50, 55)
	grid.Insert(closest, 50, 51)
	grid.Insert(farthest, 50, 90)

	got := grid.QueryNearest(50, 50, 2)
	if len(got) != 2 {
		t.Fatalf("QueryNearest returned %d entities, want 2", len(got))
	}
	if got[0] != closest {
		t.Fatalf("nearest entity = %v, want %v", got[0], closest)
	}
}

func TestSpatialGridClampsOutOfBoundsInsert(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	e := Entity(1)
	grid.Insert(e, -50, 500)

	got := grid.QueryRect(0, 0, 100, 100)
	if len(got) != 1 || got[0] != e {
		t.Fatalf("out-of-bounds insert should clamp into the grid, got %v", got)
	}
}

func TestSpatialGridClampsOutOfBoundsUpdate(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	e := Entity(1)
	grid.Insert(e, 5, 5)
	grid.Update(e, 1000, -1000)

	got := grid.QueryRect(0, 0, 100, 100)
	if len(got) != 1 || got[0] != e {
		t.Fatalf("out-of-bounds update should clamp into the grid, got %v", got)
	}
}

func TestSpatialGridRemove(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	e := Entity(1)
	grid.Insert(e, 5, 5)
	grid.Remove(e)
	if got := grid.QueryRect(0, 0, 10, 10); len(got) != 0 {
		t.Fatalf("expected no entities after Remove, got %v", got)
	}
}
