package dungeonecs

import "github.com/TheBitDrifter/bark"

// ComponentSpec is one component and its initial field values, as passed
// to Spawn. Fields left out of Data take the component's declared
// defaults.
type ComponentSpec struct {
	Component ComponentID
	Data      map[string]any
}

// World owns every entity, archetype, and auxiliary subsystem for one
// simulation instance. Nothing is safe for concurrent use from multiple
// goroutines; the scheduler's phases are the model's only concurrency
// boundary, and it is strictly cooperative and single-threaded.
type World struct {
	config WorldConfig

	entities   *entityTable
	components *ComponentRegistry
	strings    *stringPool
	graph      *archetypeGraph

	hooks     *HookRegistry
	relations *RelationStore
	refs      *EntityRefStore
	events    *EventQueue
	scheduler *Scheduler
	resources *ResourceRegistry
	queries   *QueryCache
	spatial   *SpatialGrid

	tick       uint64
	despawning bool
}

func newWorld(cfg WorldConfig) *World {
	cfg = cfg.normalized()
	components := newComponentRegistry()
	w := &World{
		config:     cfg,
		entities:   newEntityTable(cfg.MaxEntities),
		components: components,
		strings:    newStringPool(),
		graph:      newArchetypeGraph(components, cfg.InitialArchetypeCapacity),
		hooks:      newHookRegistry(),
		relations:  newRelationStore(),
		refs:       newEntityRefStore(),
		events:     newEventQueue(),
		scheduler:  newScheduler(),
		resources:  newResourceRegistry(),
	}
	w.queries = newQueryCache(w.graph)
	if cfg.SpatialCellSize > 0 {
		w.spatial = NewSpatialGrid(cfg.SpatialWidth, cfg.SpatialHeight, cfg.SpatialCellSize)
	}
	return w
}

// Components exposes the world's component registry, mainly so
// ComponentBuilder.Register can reach it.
func (w *World) Components() *ComponentRegistry { return w.components }

// Events exposes the world's event queue.
func (w *World) Events() *EventQueue { return w.events }

// Scheduler exposes the world's system scheduler.
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// Hooks exposes the world's hook registry.
func (w *World) Hooks() *HookRegistry { return w.hooks }

// Relations exposes the world's relation store.
func (w *World) Relations() *RelationStore { return w.relations }

// EntityRefs exposes the world's entity-ref tracker.
func (w *World) EntityRefs() *EntityRefStore { return w.refs }

// Resources exposes the world's resource registry.
func (w *World) Resources() *ResourceRegistry { return w.resources }

// Spatial exposes the world's default spatial grid, or nil if the world
// was configured with WorldConfig.SpatialCellSize <= 0.
func (w *World) Spatial() *SpatialGrid { return w.spatial }

// Tick returns the number of completed RunTick calls.
func (w *World) Tick() uint64 { return w.tick }

// IsAlive reports whether e refers to a currently live entity.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

func (w *World) componentIDs(specs []ComponentSpec) []ComponentID {
	ids := make([]ComponentID, len(specs))
	for i, s := range specs {
		ids[i] = s.Component
	}
	return ids
}

// Spawn creates a new entity carrying the given components, with field
// values from each spec's Data overriding the component's declared
// defaults. The new row is marked ChangeAdded for every resident
// component.
func (w *World) Spawn(specs ...ComponentSpec) (Entity, error) {
	e, err := w.entities.alloc()
	if err != nil {
		return NullEntity, bark.AddTrace(err)
	}
	if len(specs) == 0 {
		w.entities.setLocation(e, recordLocation{hasArchetype: false})
		return e, nil
	}
	arche, err := w.graph.getOrCreate(w.componentIDs(specs))
	if err != nil {
		w.entities.free(e)
		return NullEntity, bark.AddTrace(err)
	}
	row := arche.allocateRow(e)
	for _, spec := range specs {
		meta, metaErr := w.components.MetaByIndex(spec.Component)
		if metaErr != nil {
			return NullEntity, bark.AddTrace(metaErr)
		}
		arche.initComponentDefaults(row, spec.Component, meta)
		if len(spec.Data) > 0 {
			if err := arche.setComponentData(row, spec.Component, spec.Data); err != nil {
				return NullEntity, bark.AddTrace(err)
			}
		}
	}
	w.entities.setLocation(e, recordLocation{archetype: arche.id, row: uint32(row), hasArchetype: true})
	for _, spec := range specs {
		w.hooks.fireAdd(w, e, spec.Component)
	}
	return e, nil
}

// Despawn removes e, firing onRemove hooks for every resident component,
// cascading to related entities per relation metadata, and nullifying any
// entity-ref fields elsewhere in the world that pointed at e. Despawning
// an already-dead entity is a benign no-op (reported via the bool
// return), not an error: dead-entity operations are expected traffic in
// a turn-based simulation where damage and AI systems race a creature's
// death.
func (w *World) Despawn(e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	if w.despawning {
		return w.despawnInner(e)
	}
	w.despawning = true
	defer func() { w.despawning = false }()
	return w.despawnInner(e)
}

func (w *World) despawnInner(e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	loc, _ := w.entities.location(e)
	if loc.hasArchetype {
		arche := w.graph.byID[loc.archetype-1]
		for _, c := range arche.components {
			w.hooks.fireRemove(w, e, c)
		}
		w.removeRow(arche, int(loc.row))
	}
	cascades := w.relations.RemoveEntity(e)
	for _, ref := range w.refs.NullifyTarget(e) {
		w.clearRefField(ref.Source, ref.Component, ref.Field)
	}
	w.refs.RemoveSource(e)
	if w.spatial != nil {
		w.spatial.Remove(e)
	}
	w.entities.free(e)
	for _, cascade := range cascades {
		w.despawnInner(cascade)
	}
	return true
}

func (w *World) clearRefField(e Entity, c ComponentID, field string) {
	loc, ok := w.entities.location(e)
	if !ok || !loc.hasArchetype {
		return
	}
	arche := w.graph.byID[loc.archetype-1]
	_ = arche.setComponentData(int(loc.row), c, map[string]any{field: uint32(NullEntity)})
}

// removeRow swap-removes row from arche and, if another entity moved into
// the freed slot, updates that entity's location record.
func (w *World) removeRow(arche *Archetype, row int) {
	moved, didMove := arche.freeRow(row)
	if didMove {
		w.entities.setLocation(moved, recordLocation{archetype: arche.id, row: uint32(row), hasArchetype: true})
	}
}

// Add attaches component c to e with the given initial data (falling back
// to declared defaults for any field Data omits), moving e to the
// archetype for its new component set. Adding a component e already has
// is a no-op that still applies Data as a partial Set.
func (w *World) Add(e Entity, c ComponentID, data map[string]any) error {
	if !w.entities.isAlive(e) {
		return nil
	}
	loc, _ := w.entities.location(e)
	var src *Archetype
	if loc.hasArchetype {
		src = w.graph.byID[loc.archetype-1]
		if src.Has(c) {
			return w.Set(e, c, data)
		}
	}
	dst, err := w.graph.withAdded(src, c)
	if err != nil {
		return bark.AddTrace(err)
	}
	newRow := w.migrateRow(e, src, loc, dst)
	meta, err := w.components.MetaByIndex(c)
	if err != nil {
		return bark.AddTrace(err)
	}
	dst.initComponentDefaults(newRow, c, meta)
	if len(data) > 0 {
		if err := dst.setComponentData(newRow, c, data); err != nil {
			return err
		}
	}
	w.hooks.fireAdd(w, e, c)
	return nil
}

// Remove detaches component c from e, moving e to the archetype for its
// reduced component set. Removing an absent component is a no-op.
func (w *World) Remove(e Entity, c ComponentID) error {
	if !w.entities.isAlive(e) {
		return nil
	}
	loc, _ := w.entities.location(e)
	if !loc.hasArchetype {
		return nil
	}
	src := w.graph.byID[loc.archetype-1]
	if !src.Has(c) {
		return nil
	}
	w.hooks.fireRemove(w, e, c)
	dst, err := w.graph.withRemoved(src, c)
	if err != nil {
		return bark.AddTrace(err)
	}
	w.migrateRow(e, src, loc, dst)
	return nil
}

// migrateRow moves e's data from its current archetype (if any) into
// dst, copying every component the two sets share, and returns e's new
// row index in dst. dst may be nil, meaning e becomes archetype-less.
func (w *World) migrateRow(e Entity, src *Archetype, srcLoc recordLocation, dst *Archetype) int {
	if dst == nil {
		if src != nil && srcLoc.hasArchetype {
			w.removeRow(src, int(srcLoc.row))
		}
		w.entities.setLocation(e, recordLocation{hasArchetype: false})
		return -1
	}
	newRow := dst.allocateRow(e)
	if src != nil && srcLoc.hasArchetype {
		for _, c := range dst.components {
			if src.Has(c) {
				copyComponentFrom(dst, newRow, src, int(srcLoc.row), c)
			}
		}
		w.removeRow(src, int(srcLoc.row))
	}
	w.entities.setLocation(e, recordLocation{archetype: dst.id, row: uint32(newRow), hasArchetype: true})
	return newRow
}

// Set writes the keys present in data into e's resident component c,
// preserving unspecified fields, and fires c's onSet hook.
func (w *World) Set(e Entity, c ComponentID, data map[string]any) error {
	if !w.entities.isAlive(e) {
		return nil
	}
	loc, _ := w.entities.location(e)
	if !loc.hasArchetype {
		meta, _ := w.components.MetaByIndex(c)
		return UnknownComponentError{Name: meta.Name, ID: c}
	}
	arche := w.graph.byID[loc.archetype-1]
	if err := arche.setComponentData(int(loc.row), c, data); err != nil {
		return err
	}
	w.hooks.fireSet(w, e, c)
	return nil
}

// Get returns component c's current field values on e.
func (w *World) Get(e Entity, c ComponentID) (map[string]any, bool) {
	loc, ok := w.entities.location(e)
	if !ok || !loc.hasArchetype {
		return nil, false
	}
	arche := w.graph.byID[loc.archetype-1]
	return arche.readComponent(int(loc.row), c)
}

// GetField reads a single field of component c on e.
func (w *World) GetField(e Entity, c ComponentID, field string) (any, error) {
	values, ok := w.Get(e, c)
	if !ok {
		meta, _ := w.components.MetaByIndex(c)
		return nil, UnknownComponentError{Name: meta.Name, ID: c}
	}
	v, ok := values[field]
	if !ok {
		meta, _ := w.components.MetaByIndex(c)
		return nil, ColumnNotFoundError{Component: meta.Name, Field: field}
	}
	return v, nil
}

// Has reports whether e currently carries component c.
func (w *World) Has(e Entity, c ComponentID) bool {
	loc, ok := w.entities.location(e)
	if !ok || !loc.hasArchetype {
		return false
	}
	return w.graph.byID[loc.archetype-1].Has(c)
}

// GetString resolves a PrimString field's pooled index to its value.
func (w *World) GetString(idx uint32) (string, bool) {
	return w.strings.get(idx)
}

// SetString interns s and returns its pool index, for writing into a
// PrimString field.
func (w *World) SetString(s string) uint32 {
	return w.strings.intern(s)
}

// GetEntityRefRaw returns the tracked target of a PrimEntity field
// without liveness validation.
func (w *World) GetEntityRefRaw(e Entity, c ComponentID, field string) (Entity, bool) {
	return w.refs.RawGet(e, c, field)
}

// GetEntityRef returns the tracked target of a PrimEntity field,
// validated: a despawned target reads back as NullEntity.
func (w *World) GetEntityRef(e Entity, c ComponentID, field string) (Entity, bool) {
	return w.refs.Get(e, c, field, w.IsAlive)
}

// SetEntityRef records that e's (c, field) slot now points at target, for
// despawn nullification bookkeeping. Callers still write the raw u32
// handle into the column themselves via Set/Add.
func (w *World) SetEntityRef(e Entity, c ComponentID, field string, target Entity) {
	w.refs.Set(e, c, field, target)
}

// RunTick advances the simulation by one step: runs every scheduled
// phase in order, flushes the event queue, and clears every archetype's
// per-row change flags so the next tick's Added/Modified filters start
// clean.
func (w *World) RunTick() error {
	if err := w.scheduler.RunAll(w); err != nil {
		return err
	}
	if err := w.events.Flush(w); err != nil {
		return err
	}
	for _, arche := range w.graph.all() {
		arche.clearChangeFlags()
	}
	w.tick++
	return nil
}

// LiveEntities returns every currently alive entity handle, in ascending
// index order.
func (w *World) LiveEntities() []Entity {
	return w.entities.liveEntities()
}
