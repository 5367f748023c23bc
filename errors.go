package dungeonecs

import "fmt"

// EntityLimitExceededError is returned by Spawn when the free list is empty
// and the world's configured index space (WorldConfig.MaxEntities, at most
// 20 bits) is exhausted.
type EntityLimitExceededError struct {
	Max uint32
}

func (e EntityLimitExceededError) Error() string {
	return fmt.Sprintf("entity limit exceeded: max %d live entities", e.Max)
}

// UnknownComponentError is raised by metadata lookups on an unregistered
// component, and by snapshot restore when skipUnknownComponents is unset.
type UnknownComponentError struct {
	Name string
	ID   ComponentID
}

func (e UnknownComponentError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown component: %q", e.Name)
	}
	return fmt.Sprintf("unknown component index: %d", e.ID)
}

// DuplicateRegistrationError is raised when a component name is registered
// twice.
type DuplicateRegistrationError struct {
	Name string
}

func (e DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("component already registered: %q", e.Name)
}

// ColumnNotFoundError is raised by View.Column on a mismatched archetype or
// a typo'd field name.
type ColumnNotFoundError struct {
	Component string
	Field     string
}

func (e ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %s.%s", e.Component, e.Field)
}

// DuplicateHooksError is raised by HookRegistry.Register on a component that
// already has a hook set, unless the caller uses Replace.
type DuplicateHooksError struct {
	Component ComponentID
}

func (e DuplicateHooksError) Error() string {
	return fmt.Sprintf("hooks already registered for component %d", e.Component)
}

// ReentrantFlushError is raised when EventQueue.Flush is called while a
// flush is already in progress.
type ReentrantFlushError struct{}

func (e ReentrantFlushError) Error() string {
	return "event queue flush called re-entrantly"
}

// CircularSystemDependencyError is raised by the scheduler when before/after
// declarations form a cycle within a phase.
type CircularSystemDependencyError struct {
	Phase Phase
}

func (e CircularSystemDependencyError) Error() string {
	return fmt.Sprintf("circular system dependency in phase %q", e.Phase)
}

// NoMigrationPathError is raised when deserializing a snapshot whose version
// has no migration chain to the current version.
type NoMigrationPathError struct {
	From, To string
}

func (e NoMigrationPathError) Error() string {
	return fmt.Sprintf("no migration path from %q to %q", e.From, e.To)
}

// VersionMismatchError is raised when a snapshot's version does not match
// the current version and Restore was given no migration registry.
type VersionMismatchError struct {
	Got, Want string
}

func (e VersionMismatchError) Error() string {
	return fmt.Sprintf("snapshot version %q does not match %q", e.Got, e.Want)
}

// UnknownRelationError is raised by snapshot restore on a relation type name
// that was never registered, unless skipUnknownRelations is set.
type UnknownRelationError struct {
	Name string
}

func (e UnknownRelationError) Error() string {
	return fmt.Sprintf("unknown relation type: %q", e.Name)
}

// InvalidFieldError is raised when a partial component write references a
// field name or a value type that does not match the component's schema.
type InvalidFieldError struct {
	Component string
	Field     string
	Reason    string
}

func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %s.%s: %s", e.Component, e.Field, e.Reason)
}
