package bind

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/clrmem"
)

type slot struct {
	value uint64 // static address or instance offset
	ok    bool
}

// Binding is the stateful decoder for one class description.
//
// The class handle and every field's address or offset are looked up on
// first use and cached independently; a lookup that fails is retried by the
// next read. Field data is read on every call. A Binding is not safe for
// concurrent use.
type Binding[T any] struct {
	layout *Layout[T]
	class  Class
	slots  []slot
}

// Layout returns the compiled layout the binding was created from.
func (b *Binding[T]) Layout() *Layout[T] {
	return b.layout
}

// Reset drops every cached lookup, for example after the target restarted.
func (b *Binding[T]) Reset() {
	b.class = nil
	clear(b.slots)
}

// Class resolves and caches the class handle.
func (b *Binding[T]) Class(g Game) (Class, bool) {
	if b.class != nil {
		return b.class, true
	}
	if g.Image == nil {
		return nil, false
	}
	class, ok := g.Image.Class(g.Reader, b.layout.class)
	if !ok || class == nil {
		Logger().Debug("class lookup failed", zap.String("class", b.layout.class))
		return nil, false
	}
	Logger().Debug("class resolved", zap.String("class", b.layout.class))
	b.class = class
	return class, true
}

// Read reads a static or singleton-backed class. It panics for bindings
// that need an instance.
func (b *Binding[T]) Read(g Game) (T, bool) {
	if b.layout.shape == ShapeInstance {
		panic(fmt.Sprintf("bind: %s needs an instance; use ReadAt", b.layout.class))
	}
	return b.read(g, 0)
}

// ReadAt reads the instance at addr. It panics for static and singleton
// bindings. A null instance is absent.
func (b *Binding[T]) ReadAt(g Game, instance uint64) (T, bool) {
	if b.layout.shape != ShapeInstance {
		panic(fmt.Sprintf("bind: %s is a %s binding; use Read", b.layout.class, b.layout.shape))
	}
	if instance == 0 {
		var zero T
		return zero, false
	}
	return b.read(g, instance)
}

// ReadPointer reads the instance p points at.
func (b *Binding[T]) ReadPointer(g Game, p clrmem.Pointer[T]) (T, bool) {
	return b.ReadAt(g, p.Address())
}

// With adapts the binding for Pointer.ResolveWith.
func (b *Binding[T]) With(g Game) clrmem.Binding[T] {
	return bound[T]{b: b, g: g}
}

type bound[T any] struct {
	b *Binding[T]
	g Game
}

func (x bound[T]) ReadAt(addr uint64) (T, bool) {
	return x.b.ReadAt(x.g, addr)
}

func (b *Binding[T]) resolveField(g Game, class Class, i int) bool {
	if b.slots[i].ok {
		return true
	}
	f := &b.layout.fields[i]

	var value uint64
	switch f.kind {
	case kindStatic, kindSingleton:
		addr, ok := class.StaticField(g.Reader, f.Lookup)
		if !ok {
			Logger().Debug("static field lookup failed",
				zap.String("class", b.layout.class),
				zap.String("field", f.Lookup))
			return false
		}
		value = addr
	case kindPlain:
		offset, ok := class.FieldOffset(g.Reader, f.Lookup)
		if !ok {
			Logger().Debug("field offset lookup failed",
				zap.String("class", b.layout.class),
				zap.String("field", f.Lookup))
			return false
		}
		if offset == 0 {
			panic(fmt.Sprintf("bind: field %s.%s resolved to offset 0, which no managed field can have",
				b.layout.class, f.Lookup))
		}
		value = uint64(offset)
	}

	Logger().Debug("field resolved",
		zap.String("class", b.layout.class),
		zap.String("field", f.Lookup),
		zap.Uint64("value", value))
	b.slots[i] = slot{value: value, ok: true}
	return true
}

// read resolves what is not cached yet, then reads every field. Nothing is
// returned unless every field was read.
func (b *Binding[T]) read(g Game, instance uint64) (T, bool) {
	var zero T
	if len(b.layout.fields) == 0 {
		panic(fmt.Sprintf("bind: %s has no fields to read", b.layout.class))
	}

	class, ok := b.Class(g)
	if !ok {
		return zero, false
	}
	for i := range b.slots {
		if !b.resolveField(g, class, i) {
			return zero, false
		}
	}

	var out T
	base := instance
	for i := range b.layout.fields {
		f := &b.layout.fields[i]
		addr := b.slots[i].value
		if f.kind == kindPlain {
			addr += base
		}

		dst := unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(&out), f.offset)), f.size)
		if !clrmem.ReadBytes(g.Reader, addr, dst) {
			return zero, false
		}
		if f.kind == kindSingleton {
			base = binary.NativeEndian.Uint64(dst)
			if base == 0 {
				return zero, false
			}
		}
	}
	return out, true
}
