package dungeonecs

import "math"

type cellKey struct{ x, y int32 }

// SpatialGrid is a uniform-cell hash over the 2D plane, decoupled from
// archetype storage: entities register their position explicitly (or via
// SpatialIndex, which keeps a component's x/y fields synced in). Rect,
// radius, and k-nearest queries scan only the cells the query region
// overlaps.
type SpatialGrid struct {
	width, height, cellSize float64
	cells                   map[cellKey][]Entity
	positions               map[Entity][2]float64
}

// NewSpatialGrid builds a grid sized for [0,width)x[0,height) with the
// given cell edge length.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialGrid{
		width:     width,
		height:    height,
		cellSize:  cellSize,
		cells:     make(map[cellKey][]Entity),
		positions: make(map[Entity][2]float64),
	}
}

func (g *SpatialGrid) keyOf(x, y float64) cellKey {
	return cellKey{x: int32(math.Floor(x / g.cellSize)), y: int32(math.Floor(y / g.cellSize))}
}

// clamp restricts (x, y) to [0,width) x [0,height), so out-of-bounds
// positions still land in a valid cell instead of an unbounded one.
func (g *SpatialGrid) clamp(x, y float64) (float64, float64) {
	if x < 0 {
		x = 0
	} else if x >= g.width {
		x = math.Nextafter(g.width, 0)
	}
	if y < 0 {
		y = 0
	} else if y >= g.height {
		y = math.Nextafter(g.height, 0)
	}
	return x, y
}

// Insert places e at (x, y), clamped to the grid's bounds. If e was
// already tracked, use Update instead to avoid leaving a stale cell
// entry.
func (g *SpatialGrid) Insert(e Entity, x, y float64) {
	x, y = g.clamp(x, y)
	key := g.keyOf(x, y)
	g.cells[key] = append(g.cells[key], e)
	g.positions[e] = [2]float64{x, y}
}

// Update moves e to a new position, clamped to the grid's bounds,
// relocating it between cells only if the cell actually changed.
func (g *SpatialGrid) Update(e Entity, x, y float64) {
	x, y = g.clamp(x, y)
	old, tracked := g.positions[e]
	newKey := g.keyOf(x, y)
	if tracked {
		oldKey := g.keyOf(old[0], old[1])
		if oldKey == newKey {
			g.positions[e] = [2]float64{x, y}
			return
		}
		g.removeFromCell(oldKey, e)
	}
	g.cells[newKey] = append(g.cells[newKey], e)
	g.positions[e] = [2]float64{x, y}
}

// Remove drops e from the grid entirely.
func (g *SpatialGrid) Remove(e Entity) {
	pos, ok := g.positions[e]
	if !ok {
		return
	}
	g.removeFromCell(g.keyOf(pos[0], pos[1]), e)
	delete(g.positions, e)
}

func (g *SpatialGrid) removeFromCell(key cellKey, e Entity) {
	bucket := g.cells[key]
	for i, be := range bucket {
		if be == e {
			bucket[i] = bucket[len(bucket)-1]
			g.cells[key] = bucket[:len(bucket)-1]
			break
		}
	}
	if len(g.cells[key]) == 0 {
		delete(g.cells, key)
	}
}

// QueryRect returns every tracked entity whose position falls within
// [minX,maxX] x [minY,maxY].
func (g *SpatialGrid) QueryRect(minX, minY, maxX, maxY float64) []Entity {
	minKey := g.keyOf(minX, minY)
	maxKey := g.keyOf(maxX, maxY)
	var out []Entity
	for cx := minKey.x; cx <= maxKey.x; cx++ {
		for cy := minKey.y; cy <= maxKey.y; cy++ {
			for _, e := range g.cells[cellKey{x: cx, y: cy}] {
				pos := g.positions[e]
				if pos[0] >= minX && pos[0] <= maxX && pos[1] >= minY && pos[1] <= maxY {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// QueryRadius returns every tracked entity within radius of (x, y).
func (g *SpatialGrid) QueryRadius(x, y, radius float64) []Entity {
	candidates := g.QueryRect(x-radius, y-radius, x+radius, y+radius)
	r2 := radius * radius
	out := candidates[:0]
	for _, e := range candidates {
		pos := g.positions[e]
		dx, dy := pos[0]-x, pos[1]-y
		if dx*dx+dy*dy <= r2 {
			out = append(out, e)
		}
	}
	return out
}

// QueryNearest returns up to k entities closest to (x, y), nearest
// first. It starts with a one-cell search radius and doubles it until it
// has enough candidates, so dense grids stay cheap.
func (g *SpatialGrid) QueryNearest(x, y float64, k int) []Entity {
	if k <= 0 {
		return nil
	}
	radius := g.cellSize
	maxRadius := math.Hypot(g.width, g.height) + g.cellSize
	var candidates []Entity
	for radius <= maxRadius {
		candidates = g.QueryRadius(x, y, radius)
		if len(candidates) >= k {
			break
		}
		radius *= 2
	}
	type distEntity struct {
		e Entity
		d float64
	}
	scored := make([]distEntity, len(candidates))
	for i, e := range candidates {
		pos := g.positions[e]
		dx, dy := pos[0]-x, pos[1]-y
		scored[i] = distEntity{e: e, d: dx*dx + dy*dy}
	}
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].d < scored[j-1].d; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
	if len(scored) > k {
		scored = scored[:k]
	}
	out := make([]Entity, len(scored))
	for i, s := range scored {
		out[i] = s.e
	}
	return out
}

// SpatialIndex binds a SpatialGrid to a component's x/y fields. The grid
// is updated only when SyncEntity is called; World.Set does not update it.
type SpatialIndex struct {
	grid      *SpatialGrid
	component ComponentID
	xField    string
	yField    string
}

// NewSpatialIndex binds grid to the given component's x/y fields.
func NewSpatialIndex(grid *SpatialGrid, component ComponentID, xField, yField string) *SpatialIndex {
	return &SpatialIndex{grid: grid, component: component, xField: xField, yField: yField}
}

// SyncEntity reads e's current x/y field values from w and updates the
// grid to match.
func (si *SpatialIndex) SyncEntity(w *World, e Entity) error {
	x, err := w.GetField(e, si.component, si.xField)
	if err != nil {
		return err
	}
	y, err := w.GetField(e, si.component, si.yField)
	if err != nil {
		return err
	}
	fx, _ := asFloat64(x)
	fy, _ := asFloat64(y)
	si.grid.Update(e, fx, fy)
	return nil
}
