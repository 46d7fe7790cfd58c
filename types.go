package pinnedview

import "github.com/Swind/go-pinned-view/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the pinnedview package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// Scheduler is the dependency-graph executor interface that deferred release
// tasks are scheduled into
type Scheduler = core.Scheduler

// Completion represents "this unit of work has finished"
type Completion = core.Completion

// ViewDescriptor describes a pinned region as pointer + length + stride
type ViewDescriptor[T any] = core.ViewDescriptor[T]

// ViewHandle is the owned capability for one view's pin and safety token
type ViewHandle = core.ViewHandle

// Builder constructs views; configured once as checked or unchecked
type Builder = core.Builder

// Config holds builder configuration
type Config = core.Config

// GraphExecutor runs tasks honoring dependency edges
type GraphExecutor = core.GraphExecutor

// ExecutorConfig holds executor configuration
type ExecutorConfig = core.ExecutorConfig

// PinRegistry wraps the runtime's pin primitive
type PinRegistry = core.PinRegistry

// PinEntry is the owned record of one successful pin
type PinEntry = core.PinEntry

// SafetyToken is the validity flag attached to a checked view
type SafetyToken = core.SafetyToken

// StorageProvider exposes a resizable sequence's backing storage
type StorageProvider[T any] = core.StorageProvider[T]

// Vector is a growable sequence with contiguous backing storage
type Vector[T any] = core.Vector[T]

// Logger interface for structured logging
type Logger = core.Logger

// Field represents a key-value pair for structured logging
type Field = core.Field

// Metrics defines the observability interface
type Metrics = core.Metrics

// Error sentinels, re-exported so callers can errors.Is against the root
// package alone.
var (
	ErrNilInput         = core.ErrNilInput
	ErrNilObject        = core.ErrNilObject
	ErrTypeSizeMismatch = core.ErrTypeSizeMismatch
	ErrViewReleased     = core.ErrViewReleased
	ErrHandleReleased   = core.ErrHandleReleased
	ErrNoBackingStorage = core.ErrNoBackingStorage
	ErrNoExecutor       = core.ErrNoExecutor
	ErrExecutorStopped  = core.ErrExecutorStopped
)

// Convenience functions re-exported from core
var (
	DefaultConfig         = core.DefaultConfig
	DefaultExecutorConfig = core.DefaultExecutorConfig
	F                     = core.F
	NewCompletion         = core.NewCompletion
)

// NewBuilder creates a view builder with the given config.
// This is re-exported for users who want builders with custom registries.
func NewBuilder(cfg *Config) *Builder {
	return core.NewBuilder(cfg)
}

// NewGraphExecutor creates a dependency-graph executor with default handlers.
func NewGraphExecutor(id string, workers int) *GraphExecutor {
	return core.NewGraphExecutor(id, workers)
}

// NewGraphExecutorWithConfig creates a dependency-graph executor with custom handlers.
func NewGraphExecutorWithConfig(id string, workers int, cfg *ExecutorConfig) *GraphExecutor {
	return core.NewGraphExecutorWithConfig(id, workers, cfg)
}

// NewVector creates an empty growable sequence.
func NewVector[T any]() *Vector[T] {
	return core.NewVector[T]()
}

// NewVectorOf creates a growable sequence holding the given elements.
func NewVectorOf[T any](elems ...T) *Vector[T] {
	return core.NewVectorOf(elems...)
}

// AsStorageProvider adapts a foreign container to StorageProvider.
func AsStorageProvider[T any](container any) (StorageProvider[T], error) {
	return core.AsStorageProvider[T](container)
}
