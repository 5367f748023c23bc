package dungeonecs

// Field is typed sugar over a single component field, so call sites read
// "Position.Get(w, e, FieldX)"-shaped code instead of threading raw
// ComponentID/string pairs through every system.
type Field[T any] struct {
	Component ComponentID
	Name      string
}

// NewField describes one field of a registered component for later typed
// access.
func NewField[T any](component ComponentID, name string) Field[T] {
	return Field[T]{Component: component, Name: name}
}

// Get reads the field's current value on e.
func (f Field[T]) Get(w *World, e Entity) (T, bool) {
	var zero T
	v, err := w.GetField(e, f.Component, f.Name)
	if err != nil {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set writes the field's value on e, leaving the component's other
// fields untouched.
func (f Field[T]) Set(w *World, e Entity, value T) error {
	return w.Set(e, f.Component, map[string]any{f.Name: value})
}

// GetFromView reads the field's value at row within an already-resolved
// View, for the hot per-row loop inside a system.
func (f Field[T]) GetFromView(v *View, row int) T {
	values, err := Column[T](v, f.Component, f.Name)
	if err != nil || row >= len(values) {
		var zero T
		return zero
	}
	return values[row]
}
