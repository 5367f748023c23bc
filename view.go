package dungeonecs

import "reflect"

// View is a read/write window onto one archetype's live rows, handed to
// system code by Query.Iter. Column access is typed and bounds-checked
// against the component's declared field layout; row-level helpers
// expose the archetype's per-row change tracking for Added/Modified
// filtering inside a system body.
type View struct {
	archetype *Archetype
	changeCompMask uint64
	changeKind     ChangeKind
}

func newView(arche *Archetype, changeCompMask uint64, kind ChangeKind) *View {
	return &View{archetype: arche, changeCompMask: changeCompMask, changeKind: kind}
}

// Len returns the number of live rows in the view.
func (v *View) Len() int { return v.archetype.count }

// Entity returns the entity handle resident at row.
func (v *View) Entity(row int) Entity { return v.archetype.entityAt(row) }

// GetChangeFlag returns row's change status for this tick.
func (v *View) GetChangeFlag(row int) ChangeFlag { return v.archetype.changeFlag[row] }

// HasComponentChanged reports whether component c was added or modified
// on row this tick.
func (v *View) HasComponentChanged(row int, c ComponentID) bool {
	return v.archetype.changeMask[row]&(1<<uint(c)) != 0
}

// MatchesChangeFilter reports whether row satisfies the view's
// change-detection filter (set by QueryBuilder.WhereChanged /
// WhereChangedComponents). A view built without a change filter matches
// every row.
func (v *View) MatchesChangeFilter(row int) bool {
	switch v.changeKind {
	case ChangeKindNone:
		return true
	case ChangeKindAnyAdded:
		return v.archetype.changeFlag[row] == ChangeAdded
	case ChangeKindAnyModified:
		return v.archetype.changeFlag[row] != ChangeNone
	case ChangeKindComponents:
		if v.changeCompMask == 0 {
			return true
		}
		return v.archetype.changeMask[row]&v.changeCompMask != 0
	default:
		return true
	}
}

// Column returns component c's field as a typed slice, reinterpreting
// the backing column buffer directly (no copy). T must match the
// field's declared PrimitiveType's Go representation, or
// ColumnNotFoundError is returned.
func Column[T any](v *View, c ComponentID, field string) ([]T, error) {
	g, ok := v.archetype.groups[c]
	if !ok {
		meta, _ := v.archetype.registry.MetaByIndex(c)
		return nil, ColumnNotFoundError{Component: meta.Name, Field: field}
	}
	idx, ok := g.fieldIdx[field]
	if !ok {
		meta, _ := v.archetype.registry.MetaByIndex(c)
		return nil, ColumnNotFoundError{Component: meta.Name, Field: field}
	}
	col := g.columns[idx]
	if reflect.TypeOf((*T)(nil)).Elem() != col.goType {
		meta, _ := v.archetype.registry.MetaByIndex(c)
		return nil, ColumnNotFoundError{Component: meta.Name, Field: field}
	}
	return columnSlice[T](col, v.archetype.count), nil
}

// IterRows calls fn for every row matching the view's change filter, in
// row order. Returning false from fn stops iteration early.
func (v *View) IterRows(fn func(row int) bool) {
	for row := 0; row < v.archetype.count; row++ {
		if !v.MatchesChangeFilter(row) {
			continue
		}
		if !fn(row) {
			return
		}
	}
}
