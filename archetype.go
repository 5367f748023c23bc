package dungeonecs

import "github.com/TheBitDrifter/mask"

type archetypeID uint32

// ChangeFlag records a row's per-tick status, cleared at the end of every
// World.RunTick.
type ChangeFlag uint8

const (
	ChangeNone ChangeFlag = iota
	ChangeAdded
	ChangeModified
)

// componentColumns holds one column per field of a single resident
// component, in the component's declared field order.
type componentColumns struct {
	component ComponentID
	fieldIdx  map[string]int
	columns   []*column
}

func newComponentColumns(meta ComponentMeta, capacity int) *componentColumns {
	cc := &componentColumns{
		component: meta.Index,
		fieldIdx:  make(map[string]int, len(meta.Fields)),
		columns:   make([]*column, len(meta.Fields)),
	}
	for i, f := range meta.Fields {
		cc.fieldIdx[f.Name] = i
		cc.columns[i] = newColumn(f.Type, capacity)
	}
	return cc
}

// Archetype is a columnar store for every entity sharing one exact
// component set. Component data lives in per-field typed columns
// (column.go); entity handles and change-tracking live in parallel dense
// arrays alongside them.
type Archetype struct {
	id         archetypeID
	mask       mask.Mask
	components []ComponentID // sorted ascending
	groups     map[ComponentID]*componentColumns

	entityIdx  []uint32
	entityGen  []uint16
	changeFlag []ChangeFlag
	changeMask []uint64

	columnVersions map[ComponentID]uint64
	version        uint64

	count    int
	capacity int

	registry *ComponentRegistry
}

func newArchetype(id archetypeID, registry *ComponentRegistry, components []ComponentID, initialCapacity int) (*Archetype, error) {
	if initialCapacity < 1 {
		initialCapacity = defaultArchetypeCapacity
	}
	a := &Archetype{
		id:             id,
		components:     append([]ComponentID(nil), components...),
		groups:         make(map[ComponentID]*componentColumns, len(components)),
		columnVersions: make(map[ComponentID]uint64, len(components)),
		capacity:       initialCapacity,
		registry:       registry,
		entityIdx:      make([]uint32, initialCapacity),
		entityGen:      make([]uint16, initialCapacity),
		changeFlag:     make([]ChangeFlag, initialCapacity),
		changeMask:     make([]uint64, initialCapacity),
	}
	for _, c := range components {
		if c >= MaxComponentTypes {
			return nil, InvalidFieldError{Reason: "component index exceeds 64-bit change mask width"}
		}
		a.mask.Mark(uint32(c))
		meta, err := registry.MetaByIndex(c)
		if err != nil {
			return nil, err
		}
		if !meta.IsTag {
			a.groups[c] = newComponentColumns(meta, initialCapacity)
		}
	}
	return a, nil
}

// ID returns the archetype's identity, stable for the process lifetime.
func (a *Archetype) ID() uint32 { return uint32(a.id) }

// Mask returns the archetype's component-set bitmask.
func (a *Archetype) Mask() mask.Mask { return a.mask }

// Components returns the sorted component indices resident in this
// archetype.
func (a *Archetype) Components() []ComponentID { return a.components }

func singleBit(c ComponentID) mask.Mask {
	var m mask.Mask
	m.Mark(uint32(c))
	return m
}

// Has reports whether the archetype carries the given component.
func (a *Archetype) Has(c ComponentID) bool {
	return a.mask.ContainsAll(singleBit(c))
}

// Count returns the number of live rows.
func (a *Archetype) Count() int { return a.count }

func (a *Archetype) grow() {
	newCap := a.capacity * 2
	newIdx := make([]uint32, newCap)
	newGen := make([]uint16, newCap)
	newFlag := make([]ChangeFlag, newCap)
	newMask := make([]uint64, newCap)
	copy(newIdx, a.entityIdx)
	copy(newGen, a.entityGen)
	copy(newFlag, a.changeFlag)
	copy(newMask, a.changeMask)
	a.entityIdx = newIdx
	a.entityGen = newGen
	a.changeFlag = newFlag
	a.changeMask = newMask
	for _, g := range a.groups {
		for _, col := range g.columns {
			col.grow(newCap)
		}
	}
	a.capacity = newCap
}

func (a *Archetype) maskLow64() uint64 {
	var bits uint64
	for _, c := range a.components {
		bits |= 1 << uint(c)
	}
	return bits
}

// allocateRow appends a new row for entity, growing storage if at
// capacity, and marks every resident component Added for this tick.
func (a *Archetype) allocateRow(e Entity) int {
	if a.count == a.capacity {
		a.grow()
	}
	row := a.count
	a.entityIdx[row] = e.Index()
	a.entityGen[row] = e.Generation()
	a.changeFlag[row] = ChangeAdded
	a.changeMask[row] = a.maskLow64()
	a.count++
	return row
}

// freeRow swap-removes row with the last live row, returning the entity
// handle that moved into row (if any), so the caller (World) can update
// its record.
func (a *Archetype) freeRow(row int) (moved Entity, didMove bool) {
	last := a.count - 1
	if row != last {
		a.entityIdx[row] = a.entityIdx[last]
		a.entityGen[row] = a.entityGen[last]
		a.changeFlag[row] = a.changeFlag[last]
		a.changeMask[row] = a.changeMask[last]
		for _, g := range a.groups {
			for _, col := range g.columns {
				col.copyRow(row, last)
			}
		}
		moved = makeEntity(a.entityIdx[row], a.entityGen[row])
		didMove = true
	}
	a.count--
	return moved, didMove
}

// entityAt returns the entity handle resident at row.
func (a *Archetype) entityAt(row int) Entity {
	return makeEntity(a.entityIdx[row], a.entityGen[row])
}

// setComponentData writes the keys present in partial into component c's
// columns at row, preserving unspecified fields.
func (a *Archetype) setComponentData(row int, c ComponentID, partial map[string]any) error {
	g, ok := a.groups[c]
	if !ok {
		meta, _ := a.registry.MetaByIndex(c)
		return UnknownComponentError{Name: meta.Name, ID: c}
	}
	for field, value := range partial {
		idx, ok := g.fieldIdx[field]
		if !ok {
			meta, _ := a.registry.MetaByIndex(c)
			return InvalidFieldError{Component: meta.Name, Field: field, Reason: "no such field"}
		}
		if err := g.columns[idx].SetAny(row, value); err != nil {
			meta, _ := a.registry.MetaByIndex(c)
			return InvalidFieldError{Component: meta.Name, Field: field, Reason: err.Error()}
		}
	}
	if a.changeFlag[row] != ChangeAdded {
		a.changeFlag[row] = ChangeModified
	}
	a.changeMask[row] |= 1 << uint(c)
	a.version++
	a.columnVersions[c] = a.version
	return nil
}

// initComponentDefaults writes every field's default value into a freshly
// allocated row. Callers already mark the row Added via allocateRow, so
// this does not touch change-tracking.
func (a *Archetype) initComponentDefaults(row int, c ComponentID, meta ComponentMeta) {
	g, ok := a.groups[c]
	if !ok {
		return
	}
	for i, f := range meta.Fields {
		_ = g.columns[i].SetAny(row, f.Default)
	}
}

// readComponent materializes component c's fields at row as a name->value
// map. Tag components (no fields) return an empty, present map.
func (a *Archetype) readComponent(row int, c ComponentID) (map[string]any, bool) {
	g, ok := a.groups[c]
	if !ok {
		if a.Has(c) {
			return map[string]any{}, true
		}
		return nil, false
	}
	meta, _ := a.registry.MetaByIndex(c)
	out := make(map[string]any, len(meta.Fields))
	for i, f := range meta.Fields {
		out[f.Name] = g.columns[i].GetAny(row)
	}
	return out, true
}

// copyComponentFrom raw-copies component c's column values from (src,
// srcRow) into (dst, dstRow), without touching change flags. Used during
// archetype transitions to carry forward data for components present in
// both the source and destination component sets.
func copyComponentFrom(dst *Archetype, dstRow int, src *Archetype, srcRow int, c ComponentID) {
	dstGroup, dstOK := dst.groups[c]
	srcGroup, srcOK := src.groups[c]
	if !dstOK || !srcOK {
		return
	}
	for i := range dstGroup.columns {
		if i >= len(srcGroup.columns) {
			break
		}
		copyColumnRow(dstGroup.columns[i], dstRow, srcGroup.columns[i], srcRow)
	}
}

// clearChangeFlags zeros every live row's change flag and change mask, run
// once per tick after the event queue flushes.
func (a *Archetype) clearChangeFlags() {
	for i := 0; i < a.count; i++ {
		a.changeFlag[i] = ChangeNone
		a.changeMask[i] = 0
	}
}
