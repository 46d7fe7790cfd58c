package core

import (
	"fmt"
	"reflect"
	"unsafe"
)

// StorageProvider exposes a resizable sequence's current contiguous backing
// storage without copying. Containers that want zero-copy views should
// implement it directly; AsStorageProvider adapts containers that don't.
//
// BackingStorage returns the storage as it exists right now; a later resize
// may reallocate it and views already built keep pointing at the old storage.
type StorageProvider[T any] interface {
	// BackingStorage returns the current contiguous storage holding the
	// sequence's elements.
	BackingStorage() []T

	// Len returns the sequence's current logical length, which may be less
	// than the capacity of the backing storage.
	Len() int
}

// AsStorageProvider adapts a foreign container to StorageProvider without
// copying. It recognizes, in order:
//
//   - containers already implementing StorageProvider[T]
//   - *[]T
//   - pointers to structs carrying a []T field (exported or not), located by
//     offset through the struct's layout
//
// The layout path is inherently fragile: it reads storage the container does
// not contractually expose. When no layout can be interpreted the adapter
// fails explicitly with ErrNoBackingStorage rather than producing an empty
// view.
func AsStorageProvider[T any](container any) (StorageProvider[T], error) {
	if container == nil {
		return nil, ErrNilInput
	}

	switch c := container.(type) {
	case StorageProvider[T]:
		return c, nil
	case *[]T:
		if c == nil {
			return nil, ErrNilInput
		}
		return slicePtrProvider[T]{c}, nil
	}

	v := reflect.ValueOf(container)
	if v.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("%w: %T is not addressable", ErrNoBackingStorage, container)
	}
	if v.IsNil() {
		return nil, ErrNilInput
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is not a struct container", ErrNoBackingStorage, container)
	}

	want := reflect.TypeOf([]T(nil))
	st := elem.Type()
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if field.Type != want {
			continue
		}
		// Unexported fields are unreadable through reflect; go through the
		// field's offset instead.
		slot := (*[]T)(unsafe.Add(v.UnsafePointer(), field.Offset))
		return slicePtrProvider[T]{slot}, nil
	}

	return nil, fmt.Errorf("%w: %T has no %s field", ErrNoBackingStorage, container, want)
}

// slicePtrProvider reads the slice header on every call so that Len reflects
// the container's current state, not the state at adaptation time.
type slicePtrProvider[T any] struct {
	s *[]T
}

func (p slicePtrProvider[T]) BackingStorage() []T {
	return *p.s
}

func (p slicePtrProvider[T]) Len() int {
	return len(*p.s)
}
