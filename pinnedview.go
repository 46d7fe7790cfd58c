package pinnedview

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-pinned-view/core"
)

// =============================================================================
// Global Builder Helper (Singleton)
// =============================================================================

var (
	globalBuilder  *core.Builder
	globalExecutor *core.GraphExecutor
	globalMu       sync.Mutex
)

// InitGlobalBuilder initializes the global view builder backed by a global
// release executor with the specified number of workers. Safety checks are
// enabled; use InitGlobalBuilderWithConfig for a custom setup.
// The executor starts immediately.
func InitGlobalBuilder(workers int) {
	cfg := core.DefaultConfig()
	cfg.Name = "global-views"
	InitGlobalBuilderWithConfig(workers, cfg)
}

// InitGlobalBuilderWithConfig initializes the global builder with the given
// config. The config's Executor field is overwritten with the global release
// executor.
func InitGlobalBuilderWithConfig(workers int, cfg *core.Config) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalBuilder != nil {
		return // Already initialized
	}

	globalExecutor = core.NewGraphExecutor("global-release-executor", workers)
	globalExecutor.Start(context.Background())

	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	cfg.Executor = globalExecutor
	globalBuilder = core.NewBuilder(cfg)
}

// GlobalBuilder returns the global builder instance.
// It panics if InitGlobalBuilder has not been called.
func GlobalBuilder() *Builder {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalBuilder == nil {
		panic("GlobalBuilder not initialized. Call InitGlobalBuilder() first.")
	}
	return globalBuilder
}

// GlobalExecutor returns the global release executor, which can also run
// worker tasks whose completions serve as release dependencies.
// It panics if InitGlobalBuilder has not been called.
func GlobalExecutor() *GraphExecutor {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor == nil {
		panic("GlobalExecutor not initialized. Call InitGlobalBuilder() first.")
	}
	return globalExecutor
}

// ShutdownGlobalBuilder stops the global release executor and drops the
// global builder. The stop is graceful: queued deferred release tasks still
// hold pins, so they are drained before the workers exit.
func ShutdownGlobalBuilder() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor != nil {
		_ = globalExecutor.StopGraceful(5 * time.Second)
		globalExecutor = nil
	}
	globalBuilder = nil
}

// =============================================================================
// Convenience builders on the global builder
// =============================================================================

// FromSlice builds a view over s using the global builder.
// This is the recommended entry point for most use cases.
func FromSlice[T any](s []T) (ViewDescriptor[T], *ViewHandle, error) {
	return core.FromSlice(GlobalBuilder(), s)
}

// FromSliceReinterpreted builds a view over s with its elements
// reinterpreted as U, using the global builder.
func FromSliceReinterpreted[T, U any](s []T) (ViewDescriptor[U], *ViewHandle, error) {
	return core.FromSliceReinterpreted[T, U](GlobalBuilder(), s)
}

// FromSequence builds a view over seq's backing storage using the global
// builder.
func FromSequence[T any](seq StorageProvider[T]) (ViewDescriptor[T], *ViewHandle, error) {
	return core.FromSequence(GlobalBuilder(), seq)
}

// FromSequenceReinterpreted builds a view over seq's backing storage with
// its elements reinterpreted as U, using the global builder.
func FromSequenceReinterpreted[T, U any](seq StorageProvider[T]) (ViewDescriptor[U], *ViewHandle, error) {
	return core.FromSequenceReinterpreted[T, U](GlobalBuilder(), seq)
}
