package clrmem

import (
	"fmt"
	"iter"
)

// List is a resolved runtime list. The backing array is over-allocated;
// only the first Size elements are live.
type List[T any] struct {
	addr  uint64
	items Array[T]
	size  uint32
}

// ResolveList reads the list header at addr and resolves its backing array.
func ResolveList[T any](r Reader, addr uint64) (List[T], bool) {
	size, ok := Read[uint32](r, addr+ListSizeOffset)
	if !ok {
		return List[T]{}, false
	}
	items, ok := Read[Pointer[Array[T]]](r, addr+ListItemsOffset)
	if !ok {
		return List[T]{}, false
	}
	arr, ok := Resolve(items, r)
	if !ok {
		return List[T]{}, false
	}
	return List[T]{addr: addr, items: arr, size: size}, true
}

// ResolveAt implements Resolvable.
func (List[T]) ResolveAt(r Reader, addr uint64) (List[T], bool) {
	return ResolveList[T](r, addr)
}

// Address returns the header address.
func (l List[T]) Address() uint64 {
	return l.addr
}

// Size returns the number of live elements.
func (l List[T]) Size() uint32 {
	return l.size
}

// Capacity returns the length of the backing array.
func (l List[T]) Capacity() uint32 {
	return l.items.size
}

// Items returns the backing array, including unused capacity.
func (l List[T]) Items() Array[T] {
	return l.items
}

func (l List[T]) live() Array[T] {
	return l.items.truncate(l.size)
}

// Get reads element index. Indices at or beyond Size are absent.
func (l List[T]) Get(r Reader, index int) (T, bool) {
	if index < 0 || uint64(index) >= uint64(l.size) {
		var zero T
		return zero, false
	}
	return l.items.Get(r, index)
}

// All returns the live elements as a sequence.
func (l List[T]) All(r Reader) iter.Seq[T] {
	return l.live().All(r)
}

// Slice copies the live elements out of the target with a single read.
func (l List[T]) Slice(r Reader) ([]T, bool) {
	return l.live().Slice(r)
}

// String implements fmt.Stringer.
func (l List[T]) String() string {
	return fmt.Sprintf("List{addr: 0x%x, items: %s, size: %d}", l.addr, l.items, l.size)
}
