package clrmem

import (
	"fmt"
	"reflect"
)

// Pointer is the address of a T in the target. Address 0 is null.
//
// Pointer carries only the address at runtime; T selects which resolution
// routine applies. It is fixed-shape, so it can be read as a field, an array
// element or a map key.
type Pointer[T any] struct {
	address uint64
}

// NewPointer returns a Pointer to addr.
func NewPointer[T any](addr uint64) Pointer[T] {
	return Pointer[T]{address: addr}
}

// Cast reinterprets p as a pointer to U.
func Cast[U, T any](p Pointer[T]) Pointer[U] {
	return Pointer[U]{address: p.address}
}

// Address returns the raw address.
func (p Pointer[T]) Address() uint64 {
	return p.address
}

// IsNull reports whether p is the null address.
func (p Pointer[T]) IsNull() bool {
	return p.address == 0
}

// Read reads a fixed-shape T at p. The reader is not called for null.
func (p Pointer[T]) Read(r Reader) (T, bool) {
	if p.address == 0 {
		var zero T
		return zero, false
	}
	return Read[T](r, p.address)
}

// Deref reads the 8-byte address stored at p, following one more level
// of indirection.
func (p Pointer[T]) Deref(r Reader) (uint64, bool) {
	if p.address == 0 {
		return 0, false
	}
	return Read[uint64](r, p.address)
}

// ResolveWith produces T through an external binding.
func (p Pointer[T]) ResolveWith(b Binding[T]) (T, bool) {
	return ResolveAsWith[T](p, b)
}

// String implements fmt.Stringer.
func (p Pointer[T]) String() string {
	return fmt.Sprintf("Pointer[%s](0x%x)", reflect.TypeFor[T](), p.address)
}

// Resolvable is implemented by views whose shape is read from a header in the
// target. The method is called on the zero value.
type Resolvable[T any] interface {
	ResolveAt(r Reader, addr uint64) (T, bool)
}

// Resolve reconstructs the view p points at.
func Resolve[T Resolvable[T]](p Pointer[T], r Reader) (T, bool) {
	var zero T
	if p.address == 0 {
		return zero, false
	}
	return zero.ResolveAt(r, p.address)
}

// ResolveAsWith produces a U from p's address through an external binding.
func ResolveAsWith[U, T any](p Pointer[T], b Binding[U]) (U, bool) {
	if p.address == 0 {
		var zero U
		return zero, false
	}
	return b.ReadAt(p.address)
}
