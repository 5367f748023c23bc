package dungeonecs

import "fmt"

// PrimitiveType identifies the storage kind of one component field.
type PrimitiveType uint8

const (
	PrimBool PrimitiveType = iota
	PrimI8
	PrimI16
	PrimI32
	PrimU8
	PrimU16
	PrimU32
	PrimF32
	PrimF64
	// PrimString fields store a u32 index into the world's string pool.
	PrimString
	// PrimEntity fields store a u32 entity handle.
	PrimEntity
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimBool:
		return "bool"
	case PrimI8:
		return "i8"
	case PrimI16:
		return "i16"
	case PrimI32:
		return "i32"
	case PrimU8:
		return "u8"
	case PrimU16:
		return "u16"
	case PrimU32:
		return "u32"
	case PrimF32:
		return "f32"
	case PrimF64:
		return "f64"
	case PrimString:
		return "string"
	case PrimEntity:
		return "entity"
	default:
		return "unknown"
	}
}

func (p PrimitiveType) zeroValue() any {
	switch p {
	case PrimBool:
		return false
	case PrimI8:
		return int8(0)
	case PrimI16:
		return int16(0)
	case PrimI32:
		return int32(0)
	case PrimU8:
		return uint8(0)
	case PrimU16:
		return uint16(0)
	case PrimU32:
		return uint32(0)
	case PrimF32:
		return float32(0)
	case PrimF64:
		return float64(0)
	case PrimString:
		return uint32(0)
	case PrimEntity:
		return uint32(NullEntity)
	default:
		return nil
	}
}

// FieldDesc describes one ordered field of a registered component: its
// name, primitive storage type, and default value captured at
// registration time.
type FieldDesc struct {
	Name    string
	Type    PrimitiveType
	Default any
}

// ComponentID is the dense, stable index a component is assigned at
// registration. It doubles as the bit position in archetype masks and
// per-row change masks, so it must stay below 64 (spec §9's bitmask-width
// design note).
type ComponentID uint32

// ComponentMeta is the registry record for one component type: its dense
// index, name, ordered fields, byte stride, and whether it is a tag
// (zero fields, presence-only).
type ComponentMeta struct {
	Index  ComponentID
	Name   string
	Fields []FieldDesc
	Stride int
	IsTag  bool
}

func (m ComponentMeta) fieldIndex(name string) (int, bool) {
	for i, f := range m.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// MaxComponentTypes bounds how many component types a single World can
// register, matching the 64-bit per-row change mask.
const MaxComponentTypes = 64

// ComponentRegistry assigns dense indices to component types and records
// their field layout, mirroring the teacher's archetype bookkeeping but
// for component *types* instead of component sets.
type ComponentRegistry struct {
	cache *Cache[ComponentMeta]
}

func newComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{cache: NewCache[ComponentMeta](MaxComponentTypes)}
}

// Register records a new component type's field layout and assigns it the
// next free dense index. Fails with DuplicateRegistrationError if name was
// already registered.
func (r *ComponentRegistry) Register(name string, fields []FieldDesc) (ComponentID, error) {
	stride := 0
	for i := range fields {
		stride += primitiveSize(fields[i].Type)
		if fields[i].Default == nil {
			fields[i].Default = fields[i].Type.zeroValue()
		}
	}
	meta := ComponentMeta{
		Name:   name,
		Fields: append([]FieldDesc(nil), fields...),
		Stride: stride,
		IsTag:  len(fields) == 0,
	}
	idx, err := r.cache.Register(name, meta)
	if err != nil {
		return 0, DuplicateRegistrationError{Name: name}
	}
	id := ComponentID(idx)
	meta.Index = id
	*r.cache.GetItem(idx) = meta
	return id, nil
}

// MetaByIndex returns the metadata for a registered component index.
func (r *ComponentRegistry) MetaByIndex(id ComponentID) (ComponentMeta, error) {
	item := r.cache.GetItem32(uint32(id))
	if item == nil {
		return ComponentMeta{}, UnknownComponentError{ID: id}
	}
	return *item, nil
}

// MetaByName returns the metadata for a registered component name.
func (r *ComponentRegistry) MetaByName(name string) (ComponentMeta, error) {
	idx, ok := r.cache.GetIndex(name)
	if !ok {
		return ComponentMeta{}, UnknownComponentError{Name: name}
	}
	return *r.cache.GetItem(idx), nil
}

// IDByName resolves a registered name to its dense index.
func (r *ComponentRegistry) IDByName(name string) (ComponentID, bool) {
	idx, ok := r.cache.GetIndex(name)
	if !ok {
		return 0, false
	}
	return ComponentID(idx), true
}

// All returns every registered component's metadata, in registration
// (i.e. index) order.
func (r *ComponentRegistry) All() []ComponentMeta {
	return r.cache.All()
}

func primitiveSize(p PrimitiveType) int {
	switch p {
	case PrimBool, PrimI8, PrimU8:
		return 1
	case PrimI16, PrimU16:
		return 2
	case PrimI32, PrimU32, PrimF32, PrimString, PrimEntity:
		return 4
	case PrimF64:
		return 8
	default:
		return 0
	}
}

// ComponentBuilder is the explicit declaration API spec §9 asks for in
// place of reflection-based registration: callers describe a component's
// fields once, in order, with their primitive type and default value.
type ComponentBuilder struct {
	name   string
	fields []FieldDesc
}

// NewComponent starts a component declaration.
func NewComponent(name string) *ComponentBuilder {
	return &ComponentBuilder{name: name}
}

// Field appends an ordered field to the component being declared.
func (b *ComponentBuilder) Field(name string, typ PrimitiveType, def any) *ComponentBuilder {
	b.fields = append(b.fields, FieldDesc{Name: name, Type: typ, Default: def})
	return b
}

// Register commits the declaration to the world's component registry.
func (b *ComponentBuilder) Register(w *World) (ComponentID, error) {
	return w.components.Register(b.name, b.fields)
}

func (m ComponentMeta) String() string {
	return fmt.Sprintf("%s%v", m.Name, m.Fields)
}
