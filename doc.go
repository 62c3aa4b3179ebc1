// Package clrmem decodes managed-runtime data structures that live in the
// memory of another process.
//
// The monitoring side only ever holds an address and a Reader able to copy
// bytes out of the target. Everything else, such as the length of an array or
// the number of entries in a dictionary, is derived from fixed header offsets
// of the target runtime's object model (see layout.go).
//
// # Architecture Overview
//
//	clrmem/          Reader capability, Pointer and the collection views
//	├── bind/        Lazy field bindings for managed classes
//	├── memory/      Reader back ends: snapshots, wazero memory, live processes
//	├── symtab/      Offline class/field table usable as a bind.Image
//	├── errors/      Structured error types
//	└── cmd/clrview/ Inspection CLI
//
// # Views
//
// Views are coordinates into foreign memory, not owned data:
//
//	Pointer[T]    address, 0 is null
//	Array[T]      header address + element count
//	CSString      header address + UTF-16 length
//	List[T]       header address + backing Array[T] + live count
//	Map[K, V]     header address + Array[Entry[K, V]] + live count
//	Set[T]        same layout as Map with an empty value
//
// Sizes are read once when a view is resolved. Later changes in the target
// are invisible until the view is resolved again, and nothing detects that
// the object moved or was freed.
//
// # Quick Start
//
//	names, ok := clrmem.ResolveList[clrmem.Pointer[clrmem.CSString]](r, addr)
//	if !ok {
//	    return
//	}
//	for p := range names.All(r) {
//	    if s, ok := clrmem.Resolve(p, r); ok {
//	        fmt.Println(s.Decode(r))
//	    }
//	}
//
// # Errors
//
// Every failure, from an unmapped address to a null pointer, is reported as
// absence through a false second return value. Iterators end at the first
// element that cannot be read.
//
// # Thread Safety
//
// Views are immutable values and safe to share. Reader implementations decide
// their own concurrency rules.
package clrmem
