package core

// RegistryStats represents runtime observability state for a pin registry.
type RegistryStats struct {
	Name       string
	ActivePins int
}

// ExecutorStats represents runtime observability state for a graph executor.
type ExecutorStats struct {
	ID      string
	Workers int
	Queued  int
	Active  int
	Running bool
}
