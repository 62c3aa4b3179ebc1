package bind

import "github.com/wippyai/clrmem"

// Image finds managed classes by name inside a loaded module.
type Image interface {
	Class(r clrmem.Reader, name string) (Class, bool)
}

// Class looks up fields of one managed class.
type Class interface {
	// StaticField returns the absolute address of a static field's storage.
	StaticField(r clrmem.Reader, name string) (uint64, bool)
	// FieldOffset returns the byte offset of an instance field from the
	// start of an instance.
	FieldOffset(r clrmem.Reader, name string) (uint32, bool)
}

// Game is the context a binding reads in: the target's memory and the
// image holding the class.
type Game struct {
	Reader clrmem.Reader
	Image  Image
}
