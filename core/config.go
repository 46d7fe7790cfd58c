package core

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics on an executor worker.
// This allows custom panic handling, logging, and recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The context from the panicked task
	// - executorName: The name of the executor where the panic occurred
	// - workerID: The ID of the worker that ran the task
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, executorName string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, executorName string, workerID int, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Worker %d @ %s] Panic: %v\nStack trace:\n%s",
		workerID, executorName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting pin and view lifecycle metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// All methods are optional; implementations should handle nil receivers gracefully.
// Methods should be non-blocking and fast to avoid impacting hot paths.
type Metrics interface {
	// RecordPin records that an object was pinned.
	RecordPin(registryName string)

	// RecordUnpin records that a pin entry was released.
	RecordUnpin(registryName string)

	// RecordViewBuilt records a successfully constructed view.
	// kind is the builder entry point ("slice", "slice_reinterpreted",
	// "sequence", "sequence_reinterpreted").
	RecordViewBuilt(kind string)

	// RecordUseAfterRelease records a detected access to a released view.
	// Only invoked when safety checks are enabled.
	RecordUseAfterRelease()

	// RecordDeferredRelease records how long a deferred release task waited
	// between being scheduled and performing the unpin.
	RecordDeferredRelease(wait time.Duration)

	// RecordTaskPanic records that a task panicked on an executor worker.
	RecordTaskPanic(executorName string, panicInfo any)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordPin is a no-op.
func (m *NilMetrics) RecordPin(registryName string) {}

// RecordUnpin is a no-op.
func (m *NilMetrics) RecordUnpin(registryName string) {}

// RecordViewBuilt is a no-op.
func (m *NilMetrics) RecordViewBuilt(kind string) {}

// RecordUseAfterRelease is a no-op.
func (m *NilMetrics) RecordUseAfterRelease() {}

// RecordDeferredRelease is a no-op.
func (m *NilMetrics) RecordDeferredRelease(wait time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(executorName string, panicInfo any) {}

// =============================================================================
// Config: Configuration for view builders
// =============================================================================

// Config holds configuration options for a view Builder.
// All collaborators are optional; if not provided, default implementations
// will be used.
type Config struct {
	// SafetyChecks selects between the checked variant (every view carries a
	// safety token and every wired access path validates it) and the
	// unchecked variant (no token, no validation, lower overhead).
	// Selected once here; the core logic carries no conditional compilation.
	SafetyChecks bool

	// Executor receives deferred release tasks posted by
	// ViewHandle.ReleaseAfter. Without one, only synchronous Release is
	// available.
	Executor Scheduler

	// Name labels the builder's pin registry in logs and metrics.
	// Auto-generated when empty.
	Name string

	// Logger used by the registry and release paths. Defaults to NoOpLogger.
	Logger Logger

	// Metrics receives lifecycle metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// DefaultConfig returns a config with safety checks enabled and default
// collaborators.
func DefaultConfig() *Config {
	return &Config{
		SafetyChecks: true,
		Logger:       NewNoOpLogger(),
		Metrics:      &NilMetrics{},
	}
}

// =============================================================================
// ExecutorConfig: Configuration for GraphExecutor
// =============================================================================

// ExecutorConfig holds configuration options for GraphExecutor.
// All handlers are optional; if not provided, default implementations will be used.
type ExecutorConfig struct {
	// PanicHandler is called when a task panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record task execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// Logger used for lifecycle events. Defaults to NoOpLogger.
	Logger Logger
}

// DefaultExecutorConfig returns a config with default handlers.
func DefaultExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{
		PanicHandler: &DefaultPanicHandler{},
		Metrics:      &NilMetrics{},
		Logger:       NewNoOpLogger(),
	}
}
