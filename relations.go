package dungeonecs

// RelationID is the dense index a relation type is assigned at
// registration.
type RelationID uint32

// CascadePolicy controls which endpoint of a relation, if any, is
// recursively despawned when the other endpoint is despawned.
type CascadePolicy uint8

const (
	// CascadeNone leaves the other endpoint alone; only the link itself
	// is dropped.
	CascadeNone CascadePolicy = iota
	// CascadeDeleteSource despawns a link's source(s) when its target is
	// despawned (e.g. ChildOf: despawning the parent despawns its children,
	// where the child is the relation's source).
	CascadeDeleteSource
	// CascadeDeleteTargets despawns a link's target(s) when its source is
	// despawned (e.g. Owns: despawning the owner despawns what it owns).
	CascadeDeleteTargets
)

// RelationMeta describes one registered relation type.
type RelationMeta struct {
	Index     RelationID
	Name      string
	Exclusive bool          // a source may have at most one target
	Symmetric bool          // Relate(a,b) implies Relate(b,a)
	Cascade   CascadePolicy // which endpoint, if any, despawns with the other
}

type relationLink struct {
	source, target Entity
	data           any
	active         bool
}

// RelationStore holds typed directed entity-to-entity relations, indexed
// both by source and by target so traversal is O(matching links) in
// either direction.
type RelationStore struct {
	types     *Cache[RelationMeta]
	links     map[RelationID][]relationLink
	bySource  map[RelationID]map[Entity][]int // index into links[r]
	byTarget  map[RelationID]map[Entity][]int
}

func newRelationStore() *RelationStore {
	return &RelationStore{
		types:    NewCache[RelationMeta](0),
		links:    make(map[RelationID][]relationLink),
		bySource: make(map[RelationID]map[Entity][]int),
		byTarget: make(map[RelationID]map[Entity][]int),
	}
}

// Register declares a new relation type and returns its dense index.
func (rs *RelationStore) Register(name string, exclusive, symmetric bool, cascade CascadePolicy) (RelationID, error) {
	idx, err := rs.types.Register(name, RelationMeta{Name: name, Exclusive: exclusive, Symmetric: symmetric, Cascade: cascade})
	if err != nil {
		return 0, DuplicateRegistrationError{Name: name}
	}
	id := RelationID(idx)
	meta := rs.types.GetItem(idx)
	meta.Index = id
	rs.bySource[id] = make(map[Entity][]int)
	rs.byTarget[id] = make(map[Entity][]int)
	return id, nil
}

// MetaByName resolves a registered relation name to its metadata.
func (rs *RelationStore) MetaByName(name string) (RelationMeta, error) {
	idx, ok := rs.types.GetIndex(name)
	if !ok {
		return RelationMeta{}, UnknownRelationError{Name: name}
	}
	return *rs.types.GetItem(idx), nil
}

func (rs *RelationStore) addIndex(idxMap map[Entity][]int, e Entity, linkIdx int) {
	idxMap[e] = append(idxMap[e], linkIdx)
}

// Relate establishes r from source to target, enforcing exclusivity (any
// prior outgoing link from source is removed first) and symmetry (the
// reverse link is established too) per the relation's declared metadata.
// Returns false if either endpoint is not alive or r is unregistered.
func (rs *RelationStore) Relate(r RelationID, source, target Entity, data any, alive func(Entity) bool) bool {
	meta := rs.types.GetItem32(uint32(r))
	if meta == nil || !alive(source) || !alive(target) {
		return false
	}
	if meta.Exclusive {
		rs.removeAllFromSource(r, source)
	}
	rs.insertLink(r, source, target, data)
	if meta.Symmetric && source != target {
		if meta.Exclusive {
			rs.removeAllFromSource(r, target)
		}
		rs.insertLink(r, target, source, data)
	}
	return true
}

func (rs *RelationStore) insertLink(r RelationID, source, target Entity, data any) {
	idx := len(rs.links[r])
	rs.links[r] = append(rs.links[r], relationLink{source: source, target: target, data: data, active: true})
	rs.addIndex(rs.bySource[r], source, idx)
	rs.addIndex(rs.byTarget[r], target, idx)
}

// Has reports whether a live link of type r exists from source to target.
func (rs *RelationStore) Has(r RelationID, source, target Entity) bool {
	for _, idx := range rs.bySource[r][source] {
		link := rs.links[r][idx]
		if link.active && link.target == target {
			return true
		}
	}
	return false
}

// GetTarget returns the (single) target of an exclusive relation from
// source, if any.
func (rs *RelationStore) GetTarget(r RelationID, source Entity) (Entity, bool) {
	idxs := rs.bySource[r][source]
	for i := len(idxs) - 1; i >= 0; i-- {
		link := rs.links[r][idxs[i]]
		if link.active {
			return link.target, true
		}
	}
	return NullEntity, false
}

// GetTargets returns every live target reachable from source via r.
func (rs *RelationStore) GetTargets(r RelationID, source Entity) []Entity {
	var out []Entity
	for _, idx := range rs.bySource[r][source] {
		if link := rs.links[r][idx]; link.active {
			out = append(out, link.target)
		}
	}
	return out
}

// GetSources returns every live source pointing at target via r.
func (rs *RelationStore) GetSources(r RelationID, target Entity) []Entity {
	var out []Entity
	for _, idx := range rs.byTarget[r][target] {
		if link := rs.links[r][idx]; link.active {
			out = append(out, link.source)
		}
	}
	return out
}

// GetData returns the payload attached to the link from source to target.
func (rs *RelationStore) GetData(r RelationID, source, target Entity) (any, bool) {
	for _, idx := range rs.bySource[r][source] {
		link := rs.links[r][idx]
		if link.active && link.target == target {
			return link.data, true
		}
	}
	return nil, false
}

// SetData overwrites the payload attached to an existing link.
func (rs *RelationStore) SetData(r RelationID, source, target Entity, data any) bool {
	for _, idx := range rs.bySource[r][source] {
		if link := rs.links[r][idx]; link.active && link.target == target {
			rs.links[r][idx].data = data
			return true
		}
	}
	return false
}

func (rs *RelationStore) removeAllFromSource(r RelationID, source Entity) {
	for _, idx := range rs.bySource[r][source] {
		rs.links[r][idx].active = false
	}
	delete(rs.bySource[r], source)
}

// RemoveEntity drops every link touching e across every relation type,
// returning the set of cascade-class targets/sources that should in turn
// be despawned by the caller (World.Despawn resolves this recursively).
func (rs *RelationStore) RemoveEntity(e Entity) []Entity {
	var cascades []Entity
	for idx := 0; idx < rs.types.Len(); idx++ {
		r := RelationID(idx)
		meta := rs.types.GetItem(idx)
		for _, i := range rs.bySource[r][e] {
			link := rs.links[r][i]
			if !link.active {
				continue
			}
			if meta.Cascade == CascadeDeleteTargets {
				cascades = append(cascades, link.target)
			}
			rs.links[r][i].active = false
		}
		delete(rs.bySource[r], e)
		for _, i := range rs.byTarget[r][e] {
			link := rs.links[r][i]
			if !link.active {
				continue
			}
			if meta.Cascade == CascadeDeleteSource {
				cascades = append(cascades, link.source)
			}
			rs.links[r][i].active = false
		}
		delete(rs.byTarget[r], e)
	}
	return cascades
}
