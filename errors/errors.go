package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseGenerate Phase = "generate" // binding generation from a class description
	PhaseRead     Phase = "read"     // reads from a target address space
	PhaseAttach   Phase = "attach"   // opening a target process or memory
	PhaseLoad     Phase = "load"     // symbol table loading
)

// Kind categorizes the error
type Kind string

const (
	KindMixedFields        Kind = "mixed_fields"
	KindConflictingFlags   Kind = "conflicting_flags"
	KindDuplicateField     Kind = "duplicate_field"
	KindDuplicateSingleton Kind = "duplicate_singleton"
	KindFieldUnknown       Kind = "field_unknown"
	KindNotFixedShape      Kind = "not_fixed_shape"
	KindInvalidSingleton   Kind = "invalid_singleton"
	KindInvalidType        Kind = "invalid_type"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindShortRead          Kind = "short_read"
	KindUnsupported        Kind = "unsupported"
	KindNotFound           Kind = "not_found"
	KindInvalidData        Kind = "invalid_data"
	KindPermissionDenied   Kind = "permission_denied"
	KindInvalidInput       Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Class   string
	GoType  string
	Detail  string
	Path    []string
	Address uint64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Class != "" || len(e.Path) > 0 {
		b.WriteString(" at ")
		parts := e.Path
		if e.Class != "" {
			parts = append([]string{e.Class}, e.Path...)
		}
		b.WriteString(strings.Join(parts, "."))
	}

	if e.Address != 0 {
		b.WriteString(" @0x")
		b.WriteString(strconv.FormatUint(e.Address, 16))
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Class sets the managed class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Address sets the target address involved
func (b *Builder) Address(addr uint64) *Builder {
	b.err.Address = addr
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MixedFields reports a class description mixing static and instance fields
func MixedFields(class string, static, plain string) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindMixedFields,
		Class:  class,
		Detail: fmt.Sprintf("static field %q and instance field %q cannot share a binding; split the class into two descriptions", static, plain),
	}
}

// ConflictingFlags reports a field marked both static and singleton
func ConflictingFlags(class, field string) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindConflictingFlags,
		Class:  class,
		Path:   []string{field},
		Detail: "singleton fields are implied to be static, both flags are invalid",
	}
}

// DuplicateSingleton reports a second singleton field in one description
func DuplicateSingleton(class, first, second string) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindDuplicateSingleton,
		Class:  class,
		Path:   []string{second},
		Detail: fmt.Sprintf("%q is already the singleton field", first),
	}
}

// FieldUnknown reports a described field with no matching Go struct field
func FieldUnknown(class, field, goType string) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindFieldUnknown,
		Class:  class,
		Path:   []string{field},
		GoType: goType,
		Detail: "no such struct field",
	}
}

// NotFixedShape reports a Go type that cannot be read byte-for-byte from a target
func NotFixedShape(class, field, goType string) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindNotFixedShape,
		Class:  class,
		Path:   []string{field},
		GoType: goType,
		Detail: "type contains bools, pointers, slices, strings, maps or interfaces",
	}
}

// OutOfBounds reports a read outside a known region
func OutOfBounds(addr uint64, length int) *Error {
	return &Error{
		Phase:   PhaseRead,
		Kind:    KindOutOfBounds,
		Address: addr,
		Detail:  fmt.Sprintf("read of %d bytes is not mapped", length),
		Value:   length,
	}
}

// ShortRead reports a read that returned fewer bytes than requested
func ShortRead(addr uint64, got, want int) *Error {
	return &Error{
		Phase:   PhaseRead,
		Kind:    KindShortRead,
		Address: addr,
		Detail:  fmt.Sprintf("read %d of %d bytes", got, want),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Attach wraps a failure to open a target
func Attach(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseAttach,
		Kind:   KindPermissionDenied,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a symbol table loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
