package bind

import (
	"reflect"
	"sort"
	"strings"

	"github.com/wippyai/clrmem"
	"github.com/wippyai/clrmem/errors"
)

// TagName is the struct tag read by Describe.
const TagName = "clr"

const addressSize = 8

// Field describes one field of a managed class.
type Field struct {
	Name      string // Go struct field that receives the value
	Lookup    string // managed field name; defaults to Name
	Static    bool
	Singleton bool
}

// Description is a managed class and the fields to bind in it.
type Description struct {
	Class  string
	Fields []Field
}

// ClassNamer overrides the managed class name used by Describe, which
// otherwise is the Go type name.
type ClassNamer interface {
	ClassName() string
}

// Describe builds a Description from the struct tags of T.
//
//	type Timer struct {
//	    LevelTime float32 `clr:"currentLevelTime"`
//	    Ticks     uint32  `clr:"ticks"`
//	}
//
// The tag holds the managed field name followed by options: "static" for a
// class-level field, "singleton" for the static field that holds the
// instance read by every other field. A tag of "-" skips the field.
func Describe[T any]() (Description, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return Description{}, errors.New(errors.PhaseGenerate, errors.KindInvalidType).
			GoType(t.String()).
			Detail("bindings are generated for struct types").
			Build()
	}

	d := Description{Class: t.Name()}
	var zero T
	if n, ok := any(zero).(ClassNamer); ok {
		d.Class = n.ClassName()
	} else if n, ok := any(&zero).(ClassNamer); ok {
		d.Class = n.ClassName()
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" {
			continue
		}
		tag := sf.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		f := Field{Name: sf.Name, Lookup: name}
		for _, opt := range strings.Split(opts, ",") {
			switch strings.TrimSpace(opt) {
			case "static":
				f.Static = true
			case "singleton":
				f.Singleton = true
			case "":
			default:
				return Description{}, errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
					Class(d.Class).
					Path(sf.Name).
					Detail("unknown tag option %q", opt).
					Build()
			}
		}
		d.Fields = append(d.Fields, f)
	}
	return d, nil
}

type fieldKind uint8

const (
	kindPlain fieldKind = iota
	kindStatic
	kindSingleton
)

type fieldSpec struct {
	Field
	kind   fieldKind
	offset uintptr // within T
	size   uintptr
}

// Shape selects how a binding is read.
type Shape uint8

const (
	// ShapeInstance bindings read plain fields of a caller-supplied instance.
	ShapeInstance Shape = iota
	// ShapeStatic bindings read static fields only.
	ShapeStatic
	// ShapeSingleton bindings read plain fields of the instance held by a
	// static singleton field.
	ShapeSingleton
)

func (s Shape) String() string {
	switch s {
	case ShapeInstance:
		return "instance"
	case ShapeStatic:
		return "static"
	case ShapeSingleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Layout is a validated description compiled against T. It is immutable
// and may be shared; each Bind call creates independent caches.
type Layout[T any] struct {
	class  string
	fields []fieldSpec // singleton first
	shape  Shape
}

// Generate describes T from its struct tags and compiles it.
func Generate[T any]() (*Layout[T], error) {
	d, err := Describe[T]()
	if err != nil {
		return nil, err
	}
	return Compile[T](d)
}

// MustGenerate is like Generate but panics on error. It is meant for
// package-level layouts.
func MustGenerate[T any]() *Layout[T] {
	l, err := Generate[T]()
	if err != nil {
		panic(err)
	}
	return l
}

// Compile validates d and maps its fields onto the struct T.
//
// A description may not mix static and instance fields (split the class
// into two descriptions instead), may not mark a field both static and
// singleton, and may hold at most one singleton.
func Compile[T any](d Description) (*Layout[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidType).
			Class(d.Class).
			GoType(t.String()).
			Detail("bindings are generated for struct types").
			Build()
	}

	var (
		static    []fieldSpec
		instance  []fieldSpec
		singleton string
		seen      = make(map[string]bool, len(d.Fields))
	)

	for _, f := range d.Fields {
		if f.Static && f.Singleton {
			return nil, errors.ConflictingFlags(d.Class, f.Name)
		}
		if f.Singleton && singleton != "" {
			return nil, errors.DuplicateSingleton(d.Class, singleton, f.Name)
		}
		if seen[f.Name] {
			return nil, errors.New(errors.PhaseGenerate, errors.KindDuplicateField).
				Class(d.Class).
				Path(f.Name).
				Detail("field bound twice").
				Build()
		}
		seen[f.Name] = true

		sf, ok := t.FieldByName(f.Name)
		if !ok || len(sf.Index) != 1 {
			return nil, errors.FieldUnknown(d.Class, f.Name, t.String())
		}
		if !clrmem.IsFixedShape(sf.Type) {
			return nil, errors.NotFixedShape(d.Class, f.Name, sf.Type.String())
		}

		if f.Lookup == "" {
			f.Lookup = f.Name
		}
		spec := fieldSpec{Field: f, offset: sf.Offset, size: sf.Type.Size()}

		switch {
		case f.Static:
			spec.kind = kindStatic
			static = append(static, spec)
		case f.Singleton:
			if sf.Type.Size() != addressSize {
				return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidSingleton).
					Class(d.Class).
					Path(f.Name).
					GoType(sf.Type.String()).
					Detail("singleton field must hold an 8-byte address").
					Build()
			}
			spec.kind = kindSingleton
			singleton = f.Name
			instance = append(instance, spec)
		default:
			instance = append(instance, spec)
		}
	}

	if len(static) > 0 && len(instance) > 0 {
		return nil, errors.MixedFields(d.Class, static[0].Name, instance[0].Name)
	}

	l := &Layout[T]{class: d.Class}
	switch {
	case len(instance) == 0:
		l.fields = static
		l.shape = ShapeStatic
	case singleton != "":
		sort.SliceStable(instance, func(i, j int) bool {
			return instance[i].kind == kindSingleton && instance[j].kind != kindSingleton
		})
		l.fields = instance
		l.shape = ShapeSingleton
	default:
		l.fields = instance
		l.shape = ShapeInstance
	}
	return l, nil
}

// ClassName returns the managed class name looked up in the image.
func (l *Layout[T]) ClassName() string {
	return l.class
}

// Shape reports which read form the binding supports.
func (l *Layout[T]) Shape() Shape {
	return l.shape
}

// Fields returns the bound fields in resolution order.
func (l *Layout[T]) Fields() []Field {
	out := make([]Field, len(l.fields))
	for i, f := range l.fields {
		out[i] = f.Field
	}
	return out
}

// Bind allocates a binding with empty caches. It performs no I/O.
func (l *Layout[T]) Bind() *Binding[T] {
	return &Binding[T]{
		layout: l,
		slots:  make([]slot, len(l.fields)),
	}
}
