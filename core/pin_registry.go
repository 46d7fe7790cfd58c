package core

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// PinRegistry wraps the runtime's pin primitive. Pinning fixes an object's
// storage at a stable address and exempts it from relocation and reclamation
// until the matching unpin.
//
// Each successful Pin draws a dedicated runtime.Pinner from an internal pool,
// so every PinEntry is an exclusively owned resource: release consumes the
// entry, never a shared call.
type PinRegistry struct {
	name    string
	pinners sync.Pool
	active  atomic.Int64
	logger  Logger
	metrics Metrics
}

// PinEntry is the owned record of one successful pin. It is consumed exactly
// once by PinRegistry.Unpin; the owning ViewHandle enforces the exactly-once
// contract, and the registry additionally detects violations.
type PinEntry struct {
	registry *PinRegistry
	pinner   *runtime.Pinner
	addr     unsafe.Pointer
	released atomic.Bool
}

// Addr returns the stable address of the pinned storage.
func (e *PinEntry) Addr() unsafe.Pointer {
	return e.addr
}

// eface mirrors the runtime layout of an empty interface. Used to reach the
// data pointer of an arbitrary pinned object without reflection.
type eface struct {
	typ, data unsafe.Pointer
}

// NewPinRegistry creates a registry with no-op logging and metrics.
func NewPinRegistry(name string) *PinRegistry {
	return newPinRegistry(name, NewNoOpLogger(), &NilMetrics{})
}

func newPinRegistry(name string, logger Logger, metrics Metrics) *PinRegistry {
	r := &PinRegistry{
		name:    name,
		logger:  logger,
		metrics: metrics,
	}
	r.pinners.New = func() any {
		return new(runtime.Pinner)
	}
	return r
}

// Pin fixes object's storage at a stable address and prevents the garbage
// collector from reclaiming it until Unpin is called on the returned entry.
//
// object must be a non-nil pointer value (a *T or unsafe.Pointer); the
// returned address is the pointer's target. Fails with ErrNilObject when the
// reference is absent.
func (r *PinRegistry) Pin(object any) (unsafe.Pointer, *PinEntry, error) {
	if object == nil {
		return nil, nil, ErrNilObject
	}
	addr := (*eface)(unsafe.Pointer(&object)).data
	if addr == nil {
		return nil, nil, ErrNilObject
	}

	pinner := r.pinners.Get().(*runtime.Pinner)
	pinner.Pin(object)

	r.active.Add(1)
	r.metrics.RecordPin(r.name)
	r.logger.Debug("object pinned", F("registry", r.name), F("addr", addr))

	return addr, &PinEntry{registry: r, pinner: pinner, addr: addr}, nil
}

// Unpin releases the pin and returns its pinner to the pool. Must be called
// exactly once per successful Pin; a repeated unpin is reported with
// ErrEntryReleased and an entry from another registry with ErrForeignEntry.
//
// A nil entry is a no-op: views over empty containers carry no pin.
func (r *PinRegistry) Unpin(entry *PinEntry) error {
	if entry == nil {
		return nil
	}
	if entry.registry != r {
		return ErrForeignEntry
	}
	if !entry.released.CompareAndSwap(false, true) {
		return ErrEntryReleased
	}

	entry.pinner.Unpin()
	r.pinners.Put(entry.pinner)
	entry.pinner = nil

	r.active.Add(-1)
	r.metrics.RecordUnpin(r.name)
	r.logger.Debug("object unpinned", F("registry", r.name), F("addr", entry.addr))

	return nil
}

// ActivePins returns the number of entries pinned and not yet released.
func (r *PinRegistry) ActivePins() int {
	return int(r.active.Load())
}

// Name returns the registry's label used in logs and metrics.
func (r *PinRegistry) Name() string {
	return r.name
}

// Stats returns a snapshot of the registry state.
func (r *PinRegistry) Stats() RegistryStats {
	return RegistryStats{
		Name:       r.name,
		ActivePins: r.ActivePins(),
	}
}
