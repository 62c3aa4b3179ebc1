package clrmem

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/clrmem/memory"
)

func TestArray_IterAndGet(t *testing.T) {
	s := memory.NewSnapshot()
	want := []int32{10, -20, 30, 40, 50}
	putArray(s, 0x1000, want)

	arr, ok := ResolveArray[int32](s, 0x1000)
	if !ok {
		t.Fatal("ResolveArray failed")
	}
	if arr.Size() != 5 || arr.Address() != 0x1000 {
		t.Fatalf("Size/Address = %d/%#x", arr.Size(), arr.Address())
	}

	got := slices.Collect(arr.All(s))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}

	for i := range want {
		v, ok := arr.Get(s, i)
		if !ok || v != got[i] {
			t.Errorf("Get(%d) = %d, %v; want %d", i, v, ok, got[i])
		}
	}
	if _, ok := arr.Get(s, -1); ok {
		t.Error("Get(-1) should be absent")
	}
}

func TestArray_IterIsOneShot(t *testing.T) {
	s := memory.NewSnapshot()
	putArray(s, 0x1000, []uint16{1, 2, 3})
	arr, _ := ResolveArray[uint16](s, 0x1000)

	it := arr.Iter(s)
	if it.Len() != 3 {
		t.Fatalf("Len = %d, want 3", it.Len())
	}
	for i := 0; i < 3; i++ {
		if _, ok := it.Next(); !ok {
			t.Fatalf("Next %d failed", i)
		}
	}
	if _, ok := it.Next(); ok {
		t.Error("Next past end should be false")
	}
	if it.Len() != 0 {
		t.Errorf("Len after exhaustion = %d", it.Len())
	}
}

func TestArray_SizeReadOnce(t *testing.T) {
	s := memory.NewSnapshot()
	putArray(s, 0x1000, []uint32{1, 2})
	arr, _ := ResolveArray[uint32](s, 0x1000)

	// The target grows after resolution; the view does not notice.
	putArray(s, 0x1000, []uint32{1, 2, 3, 4})
	if n := len(slices.Collect(arr.All(s))); n != 2 {
		t.Errorf("All yielded %d, want 2", n)
	}

	again, _ := ResolveArray[uint32](s, 0x1000)
	if again.Size() != 4 {
		t.Errorf("re-resolved Size = %d, want 4", again.Size())
	}
}

func TestArray_StopsAtUnreadableElement(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x1000+ArraySizeOffset, uint32(4))
	memory.PutSlice(s, 0x1000+ArrayDataOffset, []uint64{1, 2})

	arr, ok := ResolveArray[uint64](s, 0x1000)
	if !ok {
		t.Fatal("ResolveArray failed")
	}
	got := slices.Collect(arr.All(s))
	if diff := cmp.Diff([]uint64{1, 2}, got); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}
	if _, ok := arr.Slice(s); ok {
		t.Error("Slice over unmapped tail should be absent")
	}
}

func TestArray_Slice(t *testing.T) {
	s := memory.NewSnapshot()
	want := []vec3{{1, 2, 3}, {4, 5, 6}}
	putArray(s, 0x2000, want)

	arr, _ := ResolveArray[vec3](s, 0x2000)
	got, ok := arr.Slice(s)
	if !ok {
		t.Fatal("Slice failed")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Slice mismatch (-want +got):\n%s", diff)
	}
}

func TestArray_SliceGarbageSize(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x1000+ArraySizeOffset, uint32(0xFFFFFFFF))

	arr, ok := ResolveArray[[64]uint64](s, 0x1000)
	if !ok {
		t.Fatal("ResolveArray failed")
	}
	if got, ok := arr.Slice(s); ok || got != nil {
		t.Errorf("Slice = %d elements, %v; want absence", len(got), ok)
	}
}

func TestArray_SliceAcrossChunks(t *testing.T) {
	s := memory.NewSnapshot()
	want := make([]uint64, 3*sliceChunk/8+5)
	for i := range want {
		want[i] = uint64(i) * 3
	}
	putArray(s, 0x10000, want)

	arr, ok := ResolveArray[uint64](s, 0x10000)
	if !ok {
		t.Fatal("ResolveArray failed")
	}
	c := memory.NewCounting(s)
	got, ok := arr.Slice(c)
	if !ok {
		t.Fatal("Slice failed")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Slice mismatch (-want +got):\n%s", diff)
	}
	// one probe of the last element plus four chunks
	if c.Calls() != 5 {
		t.Errorf("reads = %d, want 5", c.Calls())
	}
}

func TestArray_SliceGapInMiddle(t *testing.T) {
	s := memory.NewSnapshot()
	n := 2*sliceChunk/8 + 1
	memory.Put(s, 0x10000+ArraySizeOffset, uint32(n))
	// first chunk and the last element are mapped, the rest is not
	memory.PutSlice(s, 0x10000+ArrayDataOffset, make([]uint64, sliceChunk/8))
	memory.Put(s, 0x10000+ArrayDataOffset+uint64(n-1)*8, uint64(7))

	arr, ok := ResolveArray[uint64](s, 0x10000)
	if !ok {
		t.Fatal("ResolveArray failed")
	}
	if _, ok := arr.Slice(s); ok {
		t.Error("Slice over unmapped middle should be absent")
	}
}

func TestArray_Empty(t *testing.T) {
	s := memory.NewSnapshot()
	putArray(s, 0x1000, []uint32{})

	arr, ok := ResolveArray[uint32](s, 0x1000)
	if !ok || arr.Size() != 0 {
		t.Fatalf("ResolveArray = %v, %v", arr, ok)
	}
	if n := len(slices.Collect(arr.All(s))); n != 0 {
		t.Errorf("All yielded %d", n)
	}
	got, ok := arr.Slice(s)
	if !ok || len(got) != 0 {
		t.Errorf("Slice = %v, %v", got, ok)
	}
}

func TestResolveArray_MissingHeader(t *testing.T) {
	if _, ok := ResolveArray[uint32](memory.NewSnapshot(), 0x1000); ok {
		t.Error("ResolveArray of unmapped header should be absent")
	}
}
