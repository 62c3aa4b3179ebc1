package clrmem

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"unsafe"
)

// Array is a resolved runtime array: the header address and the element
// count read from it at resolution time.
type Array[T any] struct {
	addr uint64
	size uint32
}

// ResolveArray reads the array header at addr.
func ResolveArray[T any](r Reader, addr uint64) (Array[T], bool) {
	size, ok := Read[uint32](r, addr+ArraySizeOffset)
	if !ok {
		return Array[T]{}, false
	}
	return Array[T]{addr: addr, size: size}, true
}

// ResolveAt implements Resolvable.
func (Array[T]) ResolveAt(r Reader, addr uint64) (Array[T], bool) {
	return ResolveArray[T](r, addr)
}

// Address returns the header address.
func (a Array[T]) Address() uint64 {
	return a.addr
}

// Size returns the element count.
func (a Array[T]) Size() uint32 {
	return a.size
}

func (a Array[T]) stride() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

func (a Array[T]) data() uint64 {
	return a.addr + ArrayDataOffset
}

// truncate returns a view of the first n elements, never growing a.
func (a Array[T]) truncate(n uint32) Array[T] {
	if n < a.size {
		a.size = n
	}
	return a
}

// Get reads element index. The index is not checked against Size.
func (a Array[T]) Get(r Reader, index int) (T, bool) {
	if index < 0 {
		var zero T
		return zero, false
	}
	return Read[T](r, a.data()+uint64(index)*a.stride())
}

// Iter returns a one-shot iterator over the elements in address order.
func (a Array[T]) Iter(r Reader) *ArrayIter[T] {
	start := a.data()
	return &ArrayIter[T]{
		r:      r,
		pos:    start,
		end:    start + uint64(a.size)*a.stride(),
		stride: a.stride(),
	}
}

// All returns the elements as a sequence. Iteration ends early at the first
// element that cannot be read.
func (a Array[T]) All(r Reader) iter.Seq[T] {
	return func(yield func(T) bool) {
		it := a.Iter(r)
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// sliceChunk bounds the bytes Slice reads, and allocates, per step.
const sliceChunk = 64 << 10

// Slice copies all Size elements out of the target. The copy is a snapshot;
// it does not track later changes to the target.
//
// Size comes from the target and may be garbage, so the last element is
// probed first and the result grows one chunk at a time as reads succeed.
func (a Array[T]) Slice(r Reader) ([]T, bool) {
	size := uint64(a.size)
	stride := a.stride()
	if size == 0 || stride == 0 {
		return make([]T, size), true
	}
	if _, ok := Read[T](r, a.data()+(size-1)*stride); !ok {
		return nil, false
	}

	step := max(sliceChunk/stride, 1)
	out := make([]T, 0, min(size, step))
	for done := uint64(0); done < size; {
		n := int(min(step, size-done))
		start := len(out)
		out = slices.Grow(out, n)[:start+n]
		if !readSlice(r, a.data()+done*stride, out[start:]) {
			return nil, false
		}
		done += uint64(n)
	}
	return out, true
}

// String implements fmt.Stringer.
func (a Array[T]) String() string {
	return fmt.Sprintf("Array[%s]{addr: 0x%x, size: %d}", reflect.TypeFor[T](), a.addr, a.size)
}

// ArrayIter walks an array's elements once.
type ArrayIter[T any] struct {
	r      Reader
	pos    uint64
	end    uint64
	stride uint64
}

// Next returns the next element. It returns false when the array is
// exhausted or an element cannot be read; the iterator is done after that.
func (it *ArrayIter[T]) Next() (T, bool) {
	var zero T
	if it.pos >= it.end || it.stride == 0 {
		return zero, false
	}
	v, ok := Read[T](it.r, it.pos)
	if !ok {
		it.pos = it.end
		return zero, false
	}
	it.pos += it.stride
	return v, true
}

// Len returns the number of elements not yet visited.
func (it *ArrayIter[T]) Len() int {
	if it.stride == 0 || it.pos >= it.end {
		return 0
	}
	return int((it.end - it.pos) / it.stride)
}
