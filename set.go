package clrmem

import (
	"fmt"
	"iter"
)

// setEntry is Entry with an empty value. A trailing struct{} field would
// be padded by Go, so the value is left out instead.
type setEntry[T any] struct {
	hash uint32
	next uint32
	Key  T
}

// Set is a resolved runtime hash set; it shares the dictionary layout.
type Set[T any] struct {
	addr    uint64
	entries Array[setEntry[T]]
	size    uint32
}

// ResolveSet reads the set header at addr and resolves its entry array.
func ResolveSet[T any](r Reader, addr uint64) (Set[T], bool) {
	entries, size, ok := resolveBuckets[setEntry[T]](r, addr)
	if !ok {
		return Set[T]{}, false
	}
	return Set[T]{addr: addr, entries: entries, size: size}, true
}

// ResolveAt implements Resolvable.
func (Set[T]) ResolveAt(r Reader, addr uint64) (Set[T], bool) {
	return ResolveSet[T](r, addr)
}

// Address returns the header address.
func (s Set[T]) Address() uint64 {
	return s.addr
}

// Size returns the number of live elements.
func (s Set[T]) Size() uint32 {
	return s.size
}

// All yields live elements in bucket order.
func (s Set[T]) All(r Reader) iter.Seq[T] {
	return func(yield func(T) bool) {
		remaining := s.size
		if remaining == 0 {
			return
		}
		for e := range s.entries.All(r) {
			if e.hash == 0 && e.next == 0 {
				continue
			}
			remaining--
			if !yield(e.Key) || remaining == 0 {
				return
			}
		}
	}
}

// String implements fmt.Stringer.
func (s Set[T]) String() string {
	return fmt.Sprintf("Set{addr: 0x%x, entries: %s, size: %d}", s.addr, s.entries, s.size)
}
