package core

import "errors"

// Precondition violations are always detected at the builder entry points,
// independent of the SafetyChecks setting. Everything else is raised only by
// the checked variant or by fail-fast diagnostics in the release paths.
var (
	// ErrNilInput is returned by every view builder entry point when the
	// container argument is nil.
	ErrNilInput = errors.New("nil input container")

	// ErrNilObject is returned by PinRegistry.Pin when the object reference
	// is absent.
	ErrNilObject = errors.New("nil object")

	// ErrTypeSizeMismatch is returned when a reinterpreted view is requested
	// between element types of different byte sizes.
	ErrTypeSizeMismatch = errors.New("element type size mismatch")

	// ErrViewReleased is returned by view access paths after the owning
	// handle released the underlying pin. Only raised when safety checks
	// are enabled.
	ErrViewReleased = errors.New("view used after release")

	// ErrHandleReleased is returned when Release or ReleaseAfter is called
	// on a handle that was already consumed.
	ErrHandleReleased = errors.New("view handle already released")

	// ErrEntryReleased is returned by PinRegistry.Unpin when the entry was
	// already unpinned.
	ErrEntryReleased = errors.New("pin entry already released")

	// ErrForeignEntry is returned by PinRegistry.Unpin when the entry was
	// issued by a different registry.
	ErrForeignEntry = errors.New("pin entry belongs to a different registry")

	// ErrNoBackingStorage is returned when a container's backing storage
	// cannot be obtained: the container neither implements StorageProvider
	// nor has an interpretable layout.
	ErrNoBackingStorage = errors.New("container exposes no backing storage")

	// ErrNoExecutor is returned by ReleaseAfter when no release executor
	// was configured for the builder that issued the handle.
	ErrNoExecutor = errors.New("no release executor configured")

	// ErrExecutorStopped is returned when a task is submitted to an
	// executor that is shutting down.
	ErrExecutorStopped = errors.New("executor is shutting down")
)
