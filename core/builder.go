package core

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
)

// Builder composes the pin registry and the token policy into view
// construction. All entry points share one pin-and-describe primitive and
// differ only in how the backing storage is obtained; none of them copy data.
//
// Go methods cannot carry type parameters, so the entry points are
// package-level generic functions taking the Builder as their first argument.
type Builder struct {
	cfg      *Config
	registry *PinRegistry
	tokens   tokenPolicy
}

// NewBuilder creates a Builder from config. A nil config selects
// DefaultConfig (safety checks enabled, no executor).
func NewBuilder(cfg *Config) *Builder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNoOpLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &NilMetrics{}
	}
	if cfg.Name == "" {
		cfg.Name = "views-" + uuid.NewString()
	}

	b := &Builder{
		cfg:      cfg,
		registry: newPinRegistry(cfg.Name, cfg.Logger, cfg.Metrics),
	}
	if cfg.SafetyChecks {
		b.tokens = checkedTokens{}
	} else {
		b.tokens = uncheckedTokens{}
	}
	return b
}

// Registry returns the builder's pin registry, exposed for observability.
func (b *Builder) Registry() *PinRegistry {
	return b.registry
}

// SafetyChecksEnabled reports which variant the builder was configured with.
func (b *Builder) SafetyChecksEnabled() bool {
	return b.cfg.SafetyChecks
}

// FromSlice pins s's backing array and returns a view over its elements plus
// the handle owning the pin. Fails with ErrNilInput on a nil slice.
func FromSlice[T any](b *Builder, s []T) (ViewDescriptor[T], *ViewHandle, error) {
	if s == nil {
		return ViewDescriptor[T]{}, nil, ErrNilInput
	}
	return pinAndDescribe[T, T](b, s, len(s), "slice")
}

// FromSliceReinterpreted pins s's backing array and returns a view that
// reinterprets the elements as U. Fails with ErrTypeSizeMismatch unless T
// and U have equal byte sizes; reinterpretation is never truncated or padded.
func FromSliceReinterpreted[T, U any](b *Builder, s []T) (ViewDescriptor[U], *ViewHandle, error) {
	if s == nil {
		return ViewDescriptor[U]{}, nil, ErrNilInput
	}
	if err := checkSameSize[T, U](); err != nil {
		return ViewDescriptor[U]{}, nil, err
	}
	return pinAndDescribe[T, U](b, s, len(s), "slice_reinterpreted")
}

// FromSequence obtains seq's current backing storage without copying, pins
// it, and returns a view over the sequence's logical length (never the
// storage's capacity). The view is a snapshot: a later resize of seq leaves
// it describing the old storage.
func FromSequence[T any](b *Builder, seq StorageProvider[T]) (ViewDescriptor[T], *ViewHandle, error) {
	if seq == nil {
		return ViewDescriptor[T]{}, nil, ErrNilInput
	}
	return pinAndDescribe[T, T](b, seq.BackingStorage(), seq.Len(), "sequence")
}

// FromSequenceReinterpreted is FromSequence with the elements reinterpreted
// as U, under the same size precondition as FromSliceReinterpreted.
func FromSequenceReinterpreted[T, U any](b *Builder, seq StorageProvider[T]) (ViewDescriptor[U], *ViewHandle, error) {
	if seq == nil {
		return ViewDescriptor[U]{}, nil, ErrNilInput
	}
	if err := checkSameSize[T, U](); err != nil {
		return ViewDescriptor[U]{}, nil, err
	}
	return pinAndDescribe[T, U](b, seq.BackingStorage(), seq.Len(), "sequence_reinterpreted")
}

// pinAndDescribe is the single primitive behind every entry point: pin the
// storage, issue the safety token, describe the memory. count is the logical
// element count to expose, clamped to the storage actually present.
func pinAndDescribe[T, U any](b *Builder, storage []T, count int, kind string) (ViewDescriptor[U], *ViewHandle, error) {
	var u U
	stride := unsafe.Sizeof(u)

	token := b.tokens.issue(b.cfg.Metrics.RecordUseAfterRelease)
	handle := &ViewHandle{
		id:       uuid.NewString(),
		registry: b.registry,
		token:    token,
		exec:     b.cfg.Executor,
		logger:   b.cfg.Logger,
		metrics:  b.cfg.Metrics,
	}

	if len(storage) == 0 || count <= 0 {
		// Nothing to pin for an empty container; release becomes a pure
		// token invalidation.
		b.cfg.Metrics.RecordViewBuilt(kind)
		return ViewDescriptor[U]{count: 0, stride: stride, token: token}, handle, nil
	}
	if count > len(storage) {
		count = len(storage)
	}

	addr, entry, err := b.registry.Pin(unsafe.SliceData(storage))
	if err != nil {
		return ViewDescriptor[U]{}, nil, err
	}
	handle.entry = entry

	b.cfg.Metrics.RecordViewBuilt(kind)
	b.cfg.Logger.Debug("view built",
		F("handle", handle.id), F("kind", kind), F("len", count))

	desc := ViewDescriptor[U]{
		addr:   addr,
		count:  count,
		stride: stride,
		token:  token,
	}
	return desc, handle, nil
}

func checkSameSize[T, U any]() error {
	var t T
	var u U
	if unsafe.Sizeof(t) != unsafe.Sizeof(u) {
		return fmt.Errorf("%w: %T is %d bytes, %T is %d bytes",
			ErrTypeSizeMismatch, t, unsafe.Sizeof(t), u, unsafe.Sizeof(u))
	}
	return nil
}
