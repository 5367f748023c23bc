package dungeonecs

import (
	"encoding/json"
	"log"
	"sort"
)

// CurrentSnapshotVersion is the snapshot document version this build
// produces and restores to.
const CurrentSnapshotVersion = "1.1.0"

// Snapshot is the bit-exact document form of a world's state: every live
// entity's resident components, the resource registry, relations, and the
// string pool PrimString fields index into. Strings is exported and
// re-imported wholesale on Restore so a PrimString field's raw u32 index
// keeps resolving to the same value in the restored world, even though
// the restored world otherwise starts with an empty pool.
type Snapshot struct {
	Version   string                     `json:"version"`
	Tick      uint64                     `json:"tick"`
	Entities  []SnapshotEntity           `json:"entities"`
	Strings   []string                   `json:"strings,omitempty"`
	Resources map[string]json.RawMessage `json:"resources"`
	Relations []SnapshotRelation         `json:"relations,omitempty"`
}

// SnapshotEntity is one entity's serialized component set.
type SnapshotEntity struct {
	ID         uint32                    `json:"id"`
	Components map[string]map[string]any `json:"components"`
}

// SnapshotRelation is one serialized relation link.
type SnapshotRelation struct {
	Type   string `json:"type"`
	Source uint32 `json:"source"`
	Target uint32 `json:"target"`
	Data   any    `json:"data,omitempty"`
}

// Snapshot captures the world's current state as a versioned document.
// Components are keyed by name per entity (encoding/json writes map keys
// in sorted order), and entities are listed in ascending live-index order,
// so two worlds built by the same deterministic script serialize
// byte-identically.
func (w *World) Snapshot() (Snapshot, error) {
	snap := Snapshot{
		Version:   CurrentSnapshotVersion,
		Tick:      w.tick,
		Strings:   w.strings.export(),
		Resources: make(map[string]json.RawMessage),
	}
	metas := w.components.All()
	for _, e := range w.entities.liveEntities() {
		loc, _ := w.entities.location(e)
		se := SnapshotEntity{ID: uint32(e), Components: make(map[string]map[string]any)}
		if loc.hasArchetype {
			arche := w.graph.byID[loc.archetype-1]
			for _, meta := range metas {
				if !arche.Has(meta.Index) {
					continue
				}
				values, _ := arche.readComponent(int(loc.row), meta.Index)
				se.Components[meta.Name] = values
			}
		}
		snap.Entities = append(snap.Entities, se)
	}
	for idx := 0; idx < w.relations.types.Len(); idx++ {
		r := RelationID(idx)
		meta := w.relations.types.GetItem(idx)
		for _, link := range w.relations.links[r] {
			if !link.active {
				continue
			}
			snap.Relations = append(snap.Relations, SnapshotRelation{
				Type: meta.Name, Source: uint32(link.source), Target: uint32(link.target), Data: link.data,
			})
		}
	}
	for key, value := range w.resources.values {
		encoded, err := json.Marshal(value)
		if err != nil {
			continue
		}
		snap.Resources[key] = encoded
	}
	return snap, nil
}

// DeserializeOptions loosens snapshot restore to tolerate schema drift
// between the snapshot's original components/relations and the current
// world's registrations.
type DeserializeOptions struct {
	SkipUnknownComponents bool
	SkipUnknownFields     bool
	SkipUnknownRelations  bool
}

// Restore replays snap into w, migrating it to CurrentSnapshotVersion
// first if needed. Entity IDs in the snapshot are remapped to freshly
// allocated handles via an injection map applied before relations are
// restored, so stale generation bits in the document never collide with
// the live world.
func (w *World) Restore(snap Snapshot, migrations *MigrationRegistry, opts DeserializeOptions) error {
	if snap.Version != CurrentSnapshotVersion {
		if migrations == nil {
			return VersionMismatchError{Got: snap.Version, Want: CurrentSnapshotVersion}
		}
		migrated, err := migrations.Apply(snap)
		if err != nil {
			return err
		}
		snap = migrated
	}

	if len(snap.Strings) > 0 {
		w.strings.importAll(snap.Strings)
	}

	injection := make(map[uint32]Entity, len(snap.Entities))
	var spawnErr error
	w.hooks.WithHooksDisabled(func() {
		for _, se := range snap.Entities {
			if spawnErr != nil {
				return
			}
			var specs []ComponentSpec
			names := make([]string, 0, len(se.Components))
			for name := range se.Components {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fields := se.Components[name]
				id, ok := w.components.IDByName(name)
				if !ok {
					if opts.SkipUnknownComponents {
						continue
					}
					spawnErr = UnknownComponentError{Name: name}
					return
				}
				if opts.SkipUnknownFields {
					meta, err := w.components.MetaByIndex(id)
					if err != nil {
						spawnErr = err
						return
					}
					filtered := make(map[string]any, len(fields))
					for field, value := range fields {
						if _, known := meta.fieldIndex(field); known {
							filtered[field] = value
						}
					}
					fields = filtered
				}
				specs = append(specs, ComponentSpec{Component: id, Data: fields})
			}
			e, err := w.Spawn(specs...)
			if err != nil {
				spawnErr = err
				return
			}
			injection[se.ID] = e
		}
	})
	if spawnErr != nil {
		return spawnErr
	}

	for _, sr := range snap.Relations {
		meta, err := w.relations.MetaByName(sr.Type)
		if err != nil {
			if opts.SkipUnknownRelations {
				continue
			}
			return err
		}
		source, sourceOK := injection[sr.Source]
		target, targetOK := injection[sr.Target]
		if !sourceOK || !targetOK {
			continue
		}
		w.relations.Relate(meta.Index, source, target, sr.Data, w.IsAlive)
	}

	for key, raw := range snap.Resources {
		var value any
		if err := json.Unmarshal(raw, &value); err == nil {
			w.resources.Set(key, value)
		}
	}
	w.tick = snap.Tick
	return nil
}

// Migration transforms a snapshot document from one version to the next.
type Migration struct {
	FromVersion string
	ToVersion   string
	Migrate     func(Snapshot) Snapshot
}

// MigrationRegistry finds and applies a chain of registered migrations
// between a snapshot's version and CurrentSnapshotVersion.
type MigrationRegistry struct {
	migrations []Migration
}

func newMigrationRegistry() *MigrationRegistry {
	return &MigrationRegistry{}
}

// Register adds m to the registry.
func (r *MigrationRegistry) Register(m Migration) {
	r.migrations = append(r.migrations, m)
}

// Path returns the ordered migration chain from "from" to "to", or
// NoMigrationPathError if none connects them.
func (r *MigrationRegistry) Path(from, to string) ([]Migration, error) {
	if from == to {
		return nil, nil
	}
	byFrom := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byFrom[m.FromVersion] = m
	}
	var chain []Migration
	current := from
	seen := make(map[string]bool)
	for current != to {
		if seen[current] {
			return nil, NoMigrationPathError{From: from, To: to}
		}
		seen[current] = true
		m, ok := byFrom[current]
		if !ok {
			return nil, NoMigrationPathError{From: from, To: to}
		}
		chain = append(chain, m)
		current = m.ToVersion
	}
	return chain, nil
}

// Apply migrates snap to CurrentSnapshotVersion via its registered
// migration chain.
func (r *MigrationRegistry) Apply(snap Snapshot) (Snapshot, error) {
	chain, err := r.Path(snap.Version, CurrentSnapshotVersion)
	if err != nil {
		return Snapshot{}, err
	}
	for _, m := range chain {
		log.Printf("dungeonecs: applying migration %s -> %s", m.FromVersion, m.ToVersion)
		snap = m.Migrate(snap)
		snap.Version = m.ToVersion
	}
	return snap, nil
}

// AddField returns a Migration helper that inserts a new field with a
// constant default value into every instance of a component.
func AddField(from, to, component, field string, def any) Migration {
	return Migration{FromVersion: from, ToVersion: to, Migrate: func(s Snapshot) Snapshot {
		for i := range s.Entities {
			fields, ok := s.Entities[i].Components[component]
			if !ok {
				continue
			}
			if _, exists := fields[field]; !exists {
				fields[field] = def
			}
		}
		return s
	}}
}

// RemoveField returns a Migration helper that drops a field from every
// instance of a component.
func RemoveField(from, to, component, field string) Migration {
	return Migration{FromVersion: from, ToVersion: to, Migrate: func(s Snapshot) Snapshot {
		for i := range s.Entities {
			if fields, ok := s.Entities[i].Components[component]; ok {
				delete(fields, field)
			}
		}
		return s
	}}
}

// RenameField returns a Migration helper that renames a field within a
// component, preserving its value.
func RenameField(from, to, component, oldName, newName string) Migration {
	return Migration{FromVersion: from, ToVersion: to, Migrate: func(s Snapshot) Snapshot {
		for i := range s.Entities {
			fields, ok := s.Entities[i].Components[component]
			if !ok {
				continue
			}
			if v, exists := fields[oldName]; exists {
				fields[newName] = v
				delete(fields, oldName)
			}
		}
		return s
	}}
}

// RenameComponent returns a Migration helper that renames a component
// across every entity that carries it.
func RenameComponent(from, to, oldName, newName string) Migration {
	return Migration{FromVersion: from, ToVersion: to, Migrate: func(s Snapshot) Snapshot {
		for i := range s.Entities {
			if fields, ok := s.Entities[i].Components[oldName]; ok {
				s.Entities[i].Components[newName] = fields
				delete(s.Entities[i].Components, oldName)
			}
		}
		return s
	}}
}

// TransformField returns a Migration helper that replaces a field's
// value with fn's result, for unit conversions or scale changes.
func TransformField(from, to, component, field string, fn func(any) any) Migration {
	return Migration{FromVersion: from, ToVersion: to, Migrate: func(s Snapshot) Snapshot {
		for i := range s.Entities {
			fields, ok := s.Entities[i].Components[component]
			if !ok {
				continue
			}
			if v, exists := fields[field]; exists {
				fields[field] = fn(v)
			}
		}
		return s
	}}
}
