package clrmem

import (
	"fmt"
	"iter"
)

// Entry is one slot of a hash bucket array.
type Entry[K, V any] struct {
	hash  uint32
	next  uint32
	Key   K
	Value V
}

// Hash returns the stored hash code.
func (e Entry[K, V]) Hash() uint32 {
	return e.hash
}

// Next returns the bucket chain link.
func (e Entry[K, V]) Next() uint32 {
	return e.next
}

// IsTombstone reports whether the slot is empty or removed.
func (e Entry[K, V]) IsTombstone() bool {
	return e.hash == 0 && e.next == 0
}

// Map is a resolved runtime dictionary. The entry array is over-allocated
// and contains tombstones; Size is the count of live entries.
type Map[K, V any] struct {
	addr    uint64
	entries Array[Entry[K, V]]
	size    uint32
}

// ResolveMap reads the dictionary header at addr and resolves its entry array.
func ResolveMap[K, V any](r Reader, addr uint64) (Map[K, V], bool) {
	entries, size, ok := resolveBuckets[Entry[K, V]](r, addr)
	if !ok {
		return Map[K, V]{}, false
	}
	return Map[K, V]{addr: addr, entries: entries, size: size}, true
}

func resolveBuckets[E any](r Reader, addr uint64) (Array[E], uint32, bool) {
	size, ok := Read[uint32](r, addr+MapSizeOffset)
	if !ok {
		return Array[E]{}, 0, false
	}
	ptr, ok := Read[Pointer[Array[E]]](r, addr+MapEntriesOffset)
	if !ok {
		return Array[E]{}, 0, false
	}
	entries, ok := Resolve(ptr, r)
	if !ok {
		return Array[E]{}, 0, false
	}
	return entries, size, true
}

// ResolveAt implements Resolvable.
func (Map[K, V]) ResolveAt(r Reader, addr uint64) (Map[K, V], bool) {
	return ResolveMap[K, V](r, addr)
}

// Address returns the header address.
func (m Map[K, V]) Address() uint64 {
	return m.addr
}

// Size returns the number of live entries.
func (m Map[K, V]) Size() uint32 {
	return m.size
}

// Entries returns the raw bucket array, tombstones included.
func (m Map[K, V]) Entries() Array[Entry[K, V]] {
	return m.entries
}

// All yields live entries in bucket order, skipping tombstones and
// stopping after Size entries.
func (m Map[K, V]) All(r Reader) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		remaining := m.size
		if remaining == 0 {
			return
		}
		for e := range m.entries.All(r) {
			if e.IsTombstone() {
				continue
			}
			remaining--
			if !yield(e.Key, e.Value) || remaining == 0 {
				return
			}
		}
	}
}

// Keys yields the keys of live entries.
func (m Map[K, V]) Keys(r Reader) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All(r) {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields the values of live entries.
func (m Map[K, V]) Values(r Reader) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All(r) {
			if !yield(v) {
				return
			}
		}
	}
}

// String implements fmt.Stringer.
func (m Map[K, V]) String() string {
	return fmt.Sprintf("Map{addr: 0x%x, entries: %s, size: %d}", m.addr, m.entries, m.size)
}
