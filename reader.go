package clrmem

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Reader reads raw bytes from the address space of a target process.
//
// ReadMemory behaves like io.ReaderAt with a 64-bit address. A read counts
// only when it fills buf completely with a nil error; any other outcome is
// treated as absence. Implementations must tolerate arbitrary addresses.
type Reader interface {
	ReadMemory(buf []byte, addr uint64) (n int, err error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(buf []byte, addr uint64) (int, error)

// ReadMemory calls f(buf, addr).
func (f ReaderFunc) ReadMemory(buf []byte, addr uint64) (int, error) {
	return f(buf, addr)
}

// Binding produces a T from the address of an instance. It is the
// externally cached alternative to self-describing resolution.
type Binding[T any] interface {
	ReadAt(addr uint64) (T, bool)
}

// Read reads a fixed-shape T at addr in native byte order.
//
// T may be built only from numbers, arrays, structs and Pointer, so that
// every byte pattern is a valid T. Any other T, bool included, panics on
// first use; read a uint8 and compare it with zero instead.
func Read[T any](r Reader, addr uint64) (T, bool) {
	var v T
	if !ReadInto(r, addr, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

// ReadInto reads a fixed-shape T at addr into *dst. dst is left in an
// unspecified state when the read fails.
func ReadInto[T any](r Reader, addr uint64, dst *T) bool {
	mustBeFixedShape(reflect.TypeFor[T]())
	size := unsafe.Sizeof(*dst)
	if size == 0 {
		return true
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	return readFull(r, buf, addr)
}

// readSlice fills dst with len(dst) consecutive Ts starting at addr.
func readSlice[T any](r Reader, addr uint64, dst []T) bool {
	if len(dst) == 0 {
		return true
	}
	mustBeFixedShape(reflect.TypeFor[T]())
	size := int(unsafe.Sizeof(dst[0])) * len(dst)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), size)
	return readFull(r, buf, addr)
}

// ReadBytes fills buf from addr and reports whether every byte was read.
func ReadBytes(r Reader, addr uint64, buf []byte) bool {
	return readFull(r, buf, addr)
}

func readFull(r Reader, buf []byte, addr uint64) bool {
	if r == nil {
		return false
	}
	if addr+uint64(len(buf)) < addr {
		return false
	}
	n, err := r.ReadMemory(buf, addr)
	return err == nil && n == len(buf)
}

var fixedShapeCache sync.Map // reflect.Type -> bool

// IsFixedShape reports whether values of t can be reproduced from their bytes
// alone, so that reading them from a foreign address space is sound. bool is
// excluded because bytes other than 0 and 1 are not valid bools.
func IsFixedShape(t reflect.Type) bool {
	if cached, ok := fixedShapeCache.Load(t); ok {
		return cached.(bool)
	}
	ok := isFixedShape(t)
	fixedShapeCache.Store(t, ok)
	return ok
}

func isFixedShape(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return isFixedShape(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !isFixedShape(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func mustBeFixedShape(t reflect.Type) {
	if !IsFixedShape(t) {
		panic(fmt.Sprintf("clrmem: %s is not a fixed-shape type", t))
	}
}
