// Package errors provides structured error types for the clrmem module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the managed class, field path, Go type name, target
// address and cause chain.
//
// Views and bindings never return errors: a failed read is reported as absence.
// Errors appear where a caller can act on them, namely when a binding is
// generated from a class description, when a memory back end is opened or read,
// and when a symbol table is loaded.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseGenerate, errors.KindFieldUnknown).
//		Class("Timer").
//		Path("currentLevelTime").
//		GoType("main.Timer").
//		Detail("no such struct field").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MixedFields("Timer", "instance", "time")
//	err := errors.OutOfBounds(0x7ff00010, 8)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
