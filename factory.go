package dungeonecs

// factory is the single construction point for a world and its
// satellite objects, mirroring the teacher's package-level Factory
// singleton.
type factory struct{}

// Factory is the global factory instance for creating ECS objects.
var Factory factory

// NewWorld builds a World from cfg, normalizing zero-valued fields to
// their defaults (see WorldConfig.normalized).
func (f factory) NewWorld(cfg WorldConfig) *World {
	return newWorld(cfg)
}

// NewCommandBuffer returns an empty deferred-command buffer.
func (f factory) NewCommandBuffer() *CommandBuffer {
	return NewCommandBuffer()
}

// NewMigrationRegistry returns an empty snapshot migration registry.
func (f factory) NewMigrationRegistry() *MigrationRegistry {
	return newMigrationRegistry()
}

// NewSpatialGrid builds a uniform-cell spatial index sized for
// [0,width)x[0,height) with the given cell edge length.
func (f factory) NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	return NewSpatialGrid(width, height, cellSize)
}
