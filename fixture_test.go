package clrmem

import (
	"github.com/wippyai/clrmem/memory"
)

// Fixture builders lay out runtime structures in a snapshot.

func putArray[T any](s *memory.Snapshot, addr uint64, elems []T) {
	memory.Put(s, addr+ArraySizeOffset, uint32(len(elems)))
	memory.PutSlice(s, addr+ArrayDataOffset, elems)
}

func putString(s *memory.Snapshot, addr uint64, units []uint16) {
	memory.Put(s, addr+StringSizeOffset, uint32(len(units)))
	memory.PutSlice(s, addr+StringDataOffset, units)
}

func putASCII(s *memory.Snapshot, addr uint64, text string) {
	units := make([]uint16, len(text))
	for i := range text {
		units[i] = uint16(text[i])
	}
	putString(s, addr, units)
}

func putList(s *memory.Snapshot, addr, items uint64, size uint32) {
	memory.Put(s, addr+ListItemsOffset, items)
	memory.Put(s, addr+ListSizeOffset, size)
}

func putMap(s *memory.Snapshot, addr, entries uint64, size uint32) {
	memory.Put(s, addr+MapEntriesOffset, entries)
	memory.Put(s, addr+MapSizeOffset, size)
}

type stubBinding[T any] struct {
	calls int
	value T
}

func (b *stubBinding[T]) ReadAt(addr uint64) (T, bool) {
	b.calls++
	return b.value, true
}
