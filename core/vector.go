package core

const (
	defaultVectorCap    = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// Vector is a growable sequence with contiguous backing storage. It
// implements StorageProvider, so views can be built over it without copying.
//
// Growing past the current capacity, or shrink compaction, reallocates the
// backing storage; views built before that point keep describing the old
// storage. Vector is not synchronized: coordinating mutation against live
// views is the caller's responsibility.
type Vector[T any] struct {
	items []T
}

// NewVector creates an empty vector with a small initial capacity.
func NewVector[T any]() *Vector[T] {
	return &Vector[T]{
		items: make([]T, 0, defaultVectorCap),
	}
}

// NewVectorOf creates a vector holding the given elements.
func NewVectorOf[T any](elems ...T) *Vector[T] {
	v := &Vector[T]{
		items: make([]T, 0, max(len(elems), defaultVectorCap)),
	}
	v.items = append(v.items, elems...)
	return v
}

// Append adds elements to the end of the vector, growing the backing storage
// when needed.
func (v *Vector[T]) Append(elems ...T) {
	v.items = append(v.items, elems...)
}

// Len returns the current logical length.
func (v *Vector[T]) Len() int {
	return len(v.items)
}

// Cap returns the capacity of the current backing storage.
func (v *Vector[T]) Cap() int {
	return cap(v.items)
}

// At returns the i-th element.
func (v *Vector[T]) At(i int) T {
	return v.items[i]
}

// Set overwrites the i-th element.
func (v *Vector[T]) Set(i int, elem T) {
	v.items[i] = elem
}

// Truncate shrinks the vector to n elements. Truncated slots are zeroed in
// the underlying array to prevent memory leaks.
func (v *Vector[T]) Truncate(n int) {
	if n < 0 || n >= len(v.items) {
		return
	}
	tail := v.items[n:]
	for i := range tail {
		tail[i] = *new(T)
	}
	v.items = v.items[:n]
	v.maybeCompact()
}

// Clear removes all elements and resets the backing storage.
func (v *Vector[T]) Clear() {
	v.items = make([]T, 0, defaultVectorCap)
}

// BackingStorage returns the current contiguous storage. Implements
// StorageProvider.
func (v *Vector[T]) BackingStorage() []T {
	return v.items
}

func (v *Vector[T]) maybeCompact() {
	n := len(v.items)
	c := cap(v.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		v.items = make([]T, 0, defaultVectorCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultVectorCap), n)

	compacted := make([]T, n, newCap)
	copy(compacted, v.items)
	v.items = compacted
}
