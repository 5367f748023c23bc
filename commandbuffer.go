package dungeonecs

import "sort"

type commandKind uint8

const (
	cmdSpawn commandKind = iota
	cmdDespawn
	cmdAdd
	cmdRemove
	cmdSet
)

type command struct {
	kind    commandKind
	sortKey int
	seq     int
	entity  Entity
	specs   []ComponentSpec
	comp    ComponentID
	data    map[string]any
}

// CommandBuffer defers structural world edits (spawn, despawn, add,
// remove) so systems can queue changes mid-tick without mutating
// archetype storage while a query is being iterated. Commands flush in
// ascending (sortKey, registration order), letting callers that care
// about relative ordering (e.g. "damage resolves before death cleanup")
// set an explicit sort key instead of relying on call order alone.
type CommandBuffer struct {
	commands []command
	seq      int
	sortKey  int
}

// NewCommandBuffer returns an empty command buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// SetSortKey changes the sort key applied to commands queued after this
// call, until the next SetSortKey.
func (b *CommandBuffer) SetSortKey(key int) {
	b.sortKey = key
}

func (b *CommandBuffer) push(c command) {
	c.sortKey = b.sortKey
	b.seq++
	c.seq = b.seq
	b.commands = append(b.commands, c)
}

// Spawn queues an entity creation with the given component specs.
func (b *CommandBuffer) Spawn(specs ...ComponentSpec) {
	b.push(command{kind: cmdSpawn, specs: specs})
}

// Despawn queues e's removal.
func (b *CommandBuffer) Despawn(e Entity) {
	b.push(command{kind: cmdDespawn, entity: e})
}

// Add queues attaching component c to e with the given initial data.
func (b *CommandBuffer) Add(e Entity, c ComponentID, data map[string]any) {
	b.push(command{kind: cmdAdd, entity: e, comp: c, data: data})
}

// Remove queues detaching component c from e.
func (b *CommandBuffer) Remove(e Entity, c ComponentID) {
	b.push(command{kind: cmdRemove, entity: e, comp: c})
}

// Set queues a partial field write to e's component c.
func (b *CommandBuffer) Set(e Entity, c ComponentID, data map[string]any) {
	b.push(command{kind: cmdSet, entity: e, comp: c, data: data})
}

// Len returns the number of commands currently queued.
func (b *CommandBuffer) Len() int { return len(b.commands) }

// Flush applies every queued command to w in (sortKey, registration
// order) and resets the buffer. Entity handles stay stable across
// archetype moves, so unlike storage models that recycle dense indices,
// Flush needs no entity-ID remap pass: a command against an entity
// despawned earlier in the same flush simply becomes a silent no-op,
// since World's mutators already treat dead entities that way.
func (b *CommandBuffer) Flush(w *World) error {
	ordered := append([]command(nil), b.commands...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].sortKey != ordered[j].sortKey {
			return ordered[i].sortKey < ordered[j].sortKey
		}
		return ordered[i].seq < ordered[j].seq
	})
	for _, c := range ordered {
		switch c.kind {
		case cmdSpawn:
			if _, err := w.Spawn(c.specs...); err != nil {
				return err
			}
		case cmdDespawn:
			w.Despawn(c.entity)
		case cmdAdd:
			if err := w.Add(c.entity, c.comp, c.data); err != nil {
				return err
			}
		case cmdRemove:
			if err := w.Remove(c.entity, c.comp); err != nil {
				return err
			}
		case cmdSet:
			if err := w.Set(c.entity, c.comp, c.data); err != nil {
				return err
			}
		}
	}
	b.commands = b.commands[:0]
	b.seq = 0
	b.sortKey = 0
	return nil
}
