package core

import (
	"fmt"
	"unsafe"
)

// ViewDescriptor describes a pinned region of memory as plain pointer +
// element count + element stride, independent of any managed ownership.
// It is immutable once constructed and captures the container's address and
// logical length at construction time.
//
// For a view over a fixed-size source the descriptor stays accurate for its
// whole lifetime. For a view over a resizable sequence it is only guaranteed
// correct until the sequence is next resized or reallocated; the descriptor
// keeps the snapshot and no staleness is detected afterwards.
type ViewDescriptor[T any] struct {
	addr   unsafe.Pointer
	count  int
	stride uintptr
	token  *SafetyToken
}

// Addr returns the base address of the viewed storage. Nil for empty views.
// Raw escape hatch: carries no validation in either safety mode.
func (d ViewDescriptor[T]) Addr() unsafe.Pointer {
	return d.addr
}

// Len returns the element count captured at construction time.
func (d ViewDescriptor[T]) Len() int {
	return d.count
}

// Stride returns the byte size of one element.
func (d ViewDescriptor[T]) Stride() uintptr {
	return d.stride
}

// Slice returns the viewed storage as a []T sharing the pinned memory.
// With safety checks enabled, fails with ErrViewReleased once the owning
// handle has released the pin.
func (d ViewDescriptor[T]) Slice() ([]T, error) {
	if err := d.token.Validate(); err != nil {
		return nil, err
	}
	if d.count == 0 {
		return nil, nil
	}
	return unsafe.Slice((*T)(d.addr), d.count), nil
}

// Bytes returns the viewed storage as raw bytes sharing the pinned memory.
func (d ViewDescriptor[T]) Bytes() ([]byte, error) {
	if err := d.token.Validate(); err != nil {
		return nil, err
	}
	if d.count == 0 {
		return nil, nil
	}
	return unsafe.Slice((*byte)(d.addr), uintptr(d.count)*d.stride), nil
}

// At returns a pointer to the i-th element of the view.
func (d ViewDescriptor[T]) At(i int) (*T, error) {
	if err := d.token.Validate(); err != nil {
		return nil, err
	}
	if i < 0 || i >= d.count {
		return nil, fmt.Errorf("view index %d out of range [0, %d)", i, d.count)
	}
	return (*T)(unsafe.Add(d.addr, uintptr(i)*d.stride)), nil
}
