package dungeonecs

import "testing"

func TestCacheBasicOperations(t *testing.T) {
	cache := NewCache[string](10)

	items := []string{"item1", "item2", "item3", "item4", "item5"}
	indices := make([]int, len(items))

	for i, item := range items {
		index, err := cache.Register(item, item)
		if err != nil {
			t.Errorf("Failed to register item %s: %v", item, err)
		}
		indices[i] = index
		if index != i {
			t.Errorf("Index for item %s is %d, expected %d", item, index, i)
		}
	}

	for i, item := range items {
		index, found := cache.GetIndex(item)
		if !found {
			t.Errorf("Item %s not found in cache", item)
		}
		if index != indices[i] {
			t.Errorf("Index for item %s is %d, expected %d", item, index, indices[i])
		}
	}

	for i, item := range items {
		cachedItem := cache.GetItem(indices[i])
		if *cachedItem != item {
			t.Errorf("Item at index %d is %s, expected %s", indices[i], *cachedItem, item)
		}
	}

	for i, item := range items {
		cachedItem := cache.GetItem32(uint32(indices[i]))
		if *cachedItem != item {
			t.Errorf("Item at index %d is %s, expected %s", indices[i], *cachedItem, item)
		}
	}

	if _, found := cache.GetIndex("nonexistent"); found {
		t.Errorf("found non-existent item in cache")
	}
}

func TestCacheCapacity(t *testing.T) {
	const capacity = 5
	cache := NewCache[int](capacity)

	for i := 0; i < capacity; i++ {
		key := "item" + string(rune(i+'0'))
		if _, err := cache.Register(key, i); err != nil {
			t.Errorf("failed to register item %s: %v", key, err)
		}
	}

	if _, err := cache.Register("overflow", 100); err == nil {
		t.Errorf("expected error when exceeding cache capacity, but got none")
	}
}

func TestCacheUnbounded(t *testing.T) {
	cache := NewCache[int](0)
	for i := 0; i < 500; i++ {
		if _, err := cache.Register(string(rune('a'+i%26))+string(rune(i)), i); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if cache.Len() != 500 {
		t.Fatalf("Len() = %d, want 500", cache.Len())
	}
}

func TestCacheDuplicateRegistration(t *testing.T) {
	cache := NewCache[int](0)
	if _, err := cache.Register("dup", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Register("dup", 2); err == nil {
		t.Fatalf("expected error registering duplicate key")
	}
}

func TestCacheWithComplexTypes(t *testing.T) {
	type point struct{ X, Y float64 }
	cache := NewCache[point](10)

	positions := []point{{1, 2}, {3, 4}, {5, 6}}
	keys := []string{"pos1", "pos2", "pos3"}

	for i, pos := range positions {
		if _, err := cache.Register(keys[i], pos); err != nil {
			t.Errorf("failed to register position %v: %v", pos, err)
		}
	}

	for i, key := range keys {
		index, found := cache.GetIndex(key)
		if !found {
			t.Errorf("position with key %s not found", key)
			continue
		}
		pos := cache.GetItem(index)
		if pos.X != positions[i].X || pos.Y != positions[i].Y {
			t.Errorf("position at index %d is %v, expected %v", index, pos, positions[i])
		}
	}
}
