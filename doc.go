// Package pinnedview provides zero-copy views over garbage-collected memory
// for task-graph workers.
//
// Worker tasks often need a fixed address and length for the duration of
// their work; the Go garbage collector normally guarantees neither once
// memory is only reachable through runtime-managed references. This library
// pins a managed container's backing storage, hands out an unmanaged view
// descriptor (pointer + length, optionally reinterpreted to a same-size
// element type), and releases the pin either synchronously or as a deferred
// task ordered after a dependency in an external task graph.
//
// # Quick Start
//
// Initialize the global builder at application startup:
//
//	pinnedview.InitGlobalBuilder(4) // 4 release workers
//	defer pinnedview.ShutdownGlobalBuilder()
//
// Build a view over a slice and release it when the workers are done:
//
//	data := []float64{1, 2, 3}
//	view, handle, err := pinnedview.FromSlice(data)
//	if err != nil {
//		// handle error
//	}
//	// hand view.Addr()/view.Len() to workers...
//	handle.Release()
//
// # Key Concepts
//
// ViewDescriptor: an immutable {address, element count, element stride}
// snapshot of the pinned storage. Workers consume it directly; with safety
// checks enabled every access path validates that the view is still live.
//
// ViewHandle: the owned capability for one view. It is consumed exactly once
// by Release (synchronous) or ReleaseAfter (deferred, ordered after a
// dependency edge in the task graph).
//
// GraphExecutor: a dependency-graph task executor. Deferred release is just
// a task with one upstream edge; the executor's dependency edges are the
// sole ordering primitive.
//
// # Safety Checks
//
// The builder is configured once as either checked or unchecked. The checked
// variant attaches a safety token to every view and detects use after
// release; the unchecked variant carries no token and no validation for
// minimum overhead. Accessing a released view is then undefined behavior,
// a documented trade-off.
//
// # Limitations
//
// The library is zero-copy by design. It provides no mutual exclusion
// between workers sharing a view, and it does not detect a source container
// being resized while a view of it is live: a view built from a resizable
// sequence describes the storage as it existed at construction time.
//
// # Example
//
//	import (
//		"context"
//		"unsafe"
//
//		pinnedview "github.com/Swind/go-pinned-view"
//	)
//
//	func main() {
//		pinnedview.InitGlobalBuilder(2)
//		defer pinnedview.ShutdownGlobalBuilder()
//
//		data := []int32{1, 2, 3, 4}
//		view, handle, _ := pinnedview.FromSlice(data)
//
//		// ReleaseAfter invalidates the checked accessors immediately, so
//		// in-flight workers consume the raw pointer surface, which stays
//		// valid until the pin is dropped.
//		base, n := view.Addr(), view.Len()
//
//		exec := pinnedview.GlobalExecutor()
//		work, _ := exec.Submit(func(ctx context.Context) {
//			consume(unsafe.Slice((*int32)(base), n))
//		})
//
//		// Unpin only after the worker is done; wait on the returned
//		// completion if the memory must be reclaimable.
//		done, _ := handle.ReleaseAfter(work)
//		done.Wait(context.Background())
//	}
//
// For more details, see https://github.com/Swind/go-pinned-view
package pinnedview
