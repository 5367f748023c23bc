package dungeonecs

import "github.com/TheBitDrifter/mask"

// ChangeKind selects what WhereChanged/WhereChangedComponents filters a
// query's rows by.
type ChangeKind uint8

const (
	ChangeKindNone ChangeKind = iota
	ChangeKindAnyAdded
	ChangeKindAnyModified
	ChangeKindComponents
)

// Predicate filters rows a query has already matched by component set,
// for conditions that can't be expressed as a mask (a threshold on a
// field value, for instance).
type Predicate func(v *View, row int) bool

// QueryBuilder composes a with/without component mask, an optional
// change-detection filter, and optional row predicates into a reusable
// query. Build one per system at setup time and call Run/Iter every
// tick; the underlying archetype list is served from the world's
// QueryCache.
type QueryBuilder struct {
	world          *World
	with           mask.Mask
	without        mask.Mask
	changeKind     ChangeKind
	changeCompMask uint64
	predicates     []Predicate
}

// Query starts a query requiring every given component.
func Query(w *World, components ...ComponentID) *QueryBuilder {
	qb := &QueryBuilder{world: w}
	for _, c := range components {
		qb.with.Mark(uint32(c))
	}
	return qb
}

// Without excludes archetypes carrying any of the given components.
func (q *QueryBuilder) Without(components ...ComponentID) *QueryBuilder {
	for _, c := range components {
		q.without.Mark(uint32(c))
	}
	return q
}

// WhereChanged restricts rows to those with any component Added this
// tick (onlyAdded=true) or Added-or-Modified (onlyAdded=false).
func (q *QueryBuilder) WhereChanged(onlyAdded bool) *QueryBuilder {
	if onlyAdded {
		q.changeKind = ChangeKindAnyAdded
	} else {
		q.changeKind = ChangeKindAnyModified
	}
	return q
}

// WhereChangedComponents restricts rows to those where at least one of
// the given components changed this tick.
func (q *QueryBuilder) WhereChangedComponents(components ...ComponentID) *QueryBuilder {
	q.changeKind = ChangeKindComponents
	for _, c := range components {
		q.changeCompMask |= 1 << uint(c)
	}
	return q
}

// Where adds a row predicate evaluated after the mask and change
// filters. Predicates compose with logical AND.
func (q *QueryBuilder) Where(p Predicate) *QueryBuilder {
	q.predicates = append(q.predicates, p)
	return q
}

func (q *QueryBuilder) matchingArchetypes() []*Archetype {
	return q.world.queries.Resolve(q.with, q.without)
}

// Run evaluates the query and returns one View per matching archetype, in
// archetype-creation order.
func (q *QueryBuilder) Run() []*View {
	archetypes := q.matchingArchetypes()
	views := make([]*View, len(archetypes))
	for i, a := range archetypes {
		views[i] = newView(a, q.changeCompMask, q.changeKind)
	}
	return views
}

// Iter calls fn for every row of every matching archetype that satisfies
// the query's change filter and predicates. Returning false from fn stops
// iteration entirely.
func (q *QueryBuilder) Iter(fn func(v *View, row int) bool) {
	for _, v := range q.Run() {
		stop := false
		v.IterRows(func(row int) bool {
			for _, p := range q.predicates {
				if !p(v, row) {
					return true // predicate rejected the row, keep scanning
				}
			}
			if !fn(v, row) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}

// Collect returns every entity matching the query across all archetypes.
func (q *QueryBuilder) Collect() []Entity {
	var out []Entity
	q.Iter(func(v *View, row int) bool {
		out = append(out, v.Entity(row))
		return true
	})
	return out
}

// Count returns the number of rows matching the query, including change
// and predicate filters.
func (q *QueryBuilder) Count() int {
	n := 0
	q.Iter(func(v *View, row int) bool {
		n++
		return true
	})
	return n
}

// First returns the first matching entity, if any.
func (q *QueryBuilder) First() (Entity, bool) {
	var found Entity
	ok := false
	q.Iter(func(v *View, row int) bool {
		found = v.Entity(row)
		ok = true
		return false
	})
	return found, ok
}
